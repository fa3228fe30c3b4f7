package middleware

import (
	"net/http"
	"time"

	applog "santafe-store/internal/logger"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingMiddleware logs HTTP requests and responses. Health checks are
// logged at debug level.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := applog.WithRequest(logger, r)

			level := zapcore.InfoLevel
			if r.URL.Path == "/api/health" {
				level = zapcore.DebugLevel
			}

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			if ce := reqLogger.Check(level, "Request started"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()),
				)
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status >= http.StatusInternalServerError {
				level = zapcore.WarnLevel
			}

			if ce := reqLogger.Check(level, "Request completed"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}
