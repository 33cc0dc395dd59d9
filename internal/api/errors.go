package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// ErrServiceDisabled is returned for endpoints whose model is not loaded.
var ErrServiceDisabled = errors.NewStd("api: service is not enabled")

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse builds an ErrorResponse. An empty correlationID gets a
// fresh one.
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// statusFor maps an error to the HTTP status a client should see.
func statusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, ErrServiceDisabled), errors.Is(err, sherpa.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, audiofile.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.IsCategory(err, errors.CategoryValidation),
		errors.IsCategory(err, errors.CategoryAudio),
		errors.IsCategory(err, errors.CategoryFileParsing):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryNativeResult),
		errors.IsCategory(err, errors.CategoryModelInit):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes it as an ErrorResponse. The correlation ID
// matches the request ID header so log lines and responses can be joined.
func (s *Server) HandleError(c echo.Context, err error, message string) error {
	code := statusFor(err)
	resp := NewErrorResponse(err, message, code, c.Response().Header().Get(echo.HeaderXRequestID))

	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", c.Request().URL.Path),
		logger.String("method", c.Request().Method),
		logger.String("ip", c.RealIP()),
		logger.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("API error", fields...)
	} else {
		s.log.Debug("API error", fields...)
	}

	return c.JSON(code, resp)
}
