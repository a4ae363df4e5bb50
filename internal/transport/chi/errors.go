package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrdex/internal/domain"
	"github.com/kailas-cloud/solrdex/internal/domain/search/filter"
	"github.com/kailas-cloud/solrdex/internal/logger"
)

// ErrorCode is a machine-readable error class in API responses.
type ErrorCode string

// Error codes returned by the admin API.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnknownModifier    ErrorCode = "unknown_modifier"
	CodeIndexNotFound      ErrorCode = "index_not_found"
	CodeRecordNotFound     ErrorCode = "record_not_found"
	CodeUnknownRecordClass ErrorCode = "unknown_record_class"
	CodeEngineError        ErrorCode = "engine_error"
	CodeEngineUnavailable  ErrorCode = "engine_unavailable"
	CodeEngineRejected     ErrorCode = "engine_rejected"
	CodeNotImplemented     ErrorCode = "not_implemented"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code         ErrorCode `json:"code"`
	Message      string    `json:"message"`
	EngineStatus int       `json:"engine_status,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		engineErrorHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownModifier, http.StatusBadRequest, CodeUnknownModifier),
		sentinelHandler(filter.ErrInvalidValue, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(filter.ErrInvalidField, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnknownRecordClass, http.StatusNotFound, CodeUnknownRecordClass),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, CodeRecordNotFound),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, CodeEngineUnavailable),
		sentinelHandler(domain.ErrUnknownStatus, http.StatusBadGateway, CodeEngineUnavailable),
		sentinelHandler(domain.ErrPreconditionFailed, http.StatusServiceUnavailable, CodeEngineUnavailable),
		sentinelHandler(domain.ErrProtocol, http.StatusBadGateway, CodeEngineError),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, CodeEngineError),
		sentinelHandler(domain.ErrJobFailed, http.StatusBadGateway, CodeEngineRejected),
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors are built from caller input and are returned whole.
func safeDomainMessage(err error) string {
	var ee *domain.EngineError
	if errors.As(err, &ee) {
		return ee.Error()
	}
	validation := []error{
		domain.ErrInvalidRequest,
		domain.ErrUnknownModifier,
		filter.ErrInvalidValue,
		filter.ErrInvalidField,
	}
	for _, s := range validation {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrUnknownRecordClass,
		domain.ErrRecordNotFound,
		domain.ErrTransport,
		domain.ErrUnknownStatus,
		domain.ErrEndpointRequired,
		domain.ErrPreconditionFailed,
		domain.ErrProtocol,
		domain.ErrMalformedResponse,
		domain.ErrJobFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// engineErrorHandler reports engine failures (>= 400) with the engine status.
func engineErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var ee *domain.EngineError
	if !errors.As(err, &ee) {
		return false
	}
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:         CodeEngineError,
		Message:      msg,
		EngineStatus: ee.Status,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// writeRejected reports an engine answer that was not 200 on a flag-returning path.
func writeRejected(w http.ResponseWriter, status int, what string) {
	writeJSON(w, http.StatusBadGateway, ErrorResponse{
		Code:         CodeEngineRejected,
		Message:      what + " was not acknowledged by the search engine",
		EngineStatus: status,
	})
}
