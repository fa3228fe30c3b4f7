package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	applog "santafe-store/internal/logger"
	"santafe-store/internal/service"

	"go.uber.org/zap"
)

// Response is the envelope every API response uses
type Response struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// StatusForKind maps a service error kind to its HTTP status
func StatusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	RespondWithErrorCode(w, statusCode, codeForStatus(statusCode), message, details)
}

// codeForStatus names the error code clients see for a bare status
func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return service.KindInvalidInput.String()
	case http.StatusUnauthorized:
		return service.KindUnauthenticated.String()
	case http.StatusForbidden:
		return service.KindForbidden.String()
	case http.StatusNotFound:
		return service.KindNotFound.String()
	case http.StatusConflict:
		return service.KindConflict.String()
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusInternalServerError:
		return service.KindPersistenceFailure.String()
	default:
		return strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
	}
}

// RespondWithErrorCode sends a structured error response with an explicit code
func RespondWithErrorCode(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	RespondWithJSON(w, statusCode, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// RespondWithServiceError translates any service error into the envelope.
// Persistence causes are logged and never sent to the client.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	kind := service.KindOf(err)
	status := StatusForKind(kind)

	logger = applog.WithRequest(logger, r)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	} else {
		var svcErr *service.Error
		if errors.As(err, &svcErr) && svcErr.Err != nil {
			logger.Debug("Request rejected", zap.String("kind", kind.String()), zap.Error(svcErr.Err))
		}
	}

	message := service.MessageOf(err)
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	RespondWithErrorCode(w, status, kind.String(), message, nil)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, validationErrors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = validationErrors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					applog.WithRequest(logger, r).Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithData wraps data in a success envelope
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondWithJSON(w, statusCode, Response{Success: true, Data: data})
}

// RespondWithMessage sends a success envelope carrying only a message
func RespondWithMessage(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Response{Success: true, Message: message})
}
