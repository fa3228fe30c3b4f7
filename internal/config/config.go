package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	ClientURL string
	LogLevel  string
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Store       string // "postgres" or "redis"
	CookieName  string
	IdleTimeout time.Duration
	Lifetime    time.Duration
}

type StorageConfig struct {
	Driver         string // "disk" or "minio"
	UploadsDir     string
	MaxUploadBytes int64
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// IsProduction reports whether the server runs with production settings
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the connection string for the pgx stdlib driver.
// DATABASE_URL takes precedence over the individual DB_* settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" && c.Schema != "public" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Addr returns the host:port address of the Redis server
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func Load() *Config {
	// Populate the process environment first so both viper and
	// libraries that read os.Getenv directly see the same values.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: no .env file loaded, using process environment: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CLIENT_URL", "")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_STORE", "postgres")
	viper.SetDefault("SESSION_COOKIE_NAME", "session_id")
	viper.SetDefault("SESSION_IDLE_TIMEOUT_HOURS", 24*7)
	viper.SetDefault("SESSION_LIFETIME_HOURS", 24*30)
	viper.SetDefault("STORAGE_DRIVER", "disk")
	viper.SetDefault("UPLOADS_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	viper.SetDefault("MINIO_BUCKET", "product-images")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("ADMIN_NAME", "Administrator")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:      viper.GetString("SERVER_PORT"),
			Env:       viper.GetString("SERVER_ENV"),
			ClientURL: viper.GetString("CLIENT_URL"),
			LogLevel:  viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			URL:          viper.GetString("DATABASE_URL"),
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			Schema:       viper.GetString("DB_SCHEMA"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Store:       viper.GetString("SESSION_STORE"),
			CookieName:  viper.GetString("SESSION_COOKIE_NAME"),
			IdleTimeout: time.Duration(viper.GetInt("SESSION_IDLE_TIMEOUT_HOURS")) * time.Hour,
			Lifetime:    time.Duration(viper.GetInt("SESSION_LIFETIME_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:         viper.GetString("STORAGE_DRIVER"),
			UploadsDir:     viper.GetString("UPLOADS_DIR"),
			MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),
			MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
			MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
			MinioBucket:    viper.GetString("MINIO_BUCKET"),
			MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
			MinioPublicURL: viper.GetString("MINIO_PUBLIC_URL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
			Phone:    viper.GetString("ADMIN_PHONE"),
		},
	}
}
