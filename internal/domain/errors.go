package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport signals that no response was obtained (DNS, connect, timeout).
	ErrTransport = errors.New("transport error")
	// ErrUnknownStatus signals a response with neither a status nor a transport error.
	ErrUnknownStatus = errors.New("unknown status code")
	// ErrMalformedResponse signals a response body that is not valid JSON.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEngine signals a status >= 400 returned by the search engine.
	ErrEngine = errors.New("engine error")
	// ErrProtocol signals a response that violates the expected envelope.
	ErrProtocol = errors.New("protocol error")
	// ErrUnknownModifier signals a filter referencing an unregistered modifier.
	ErrUnknownModifier = errors.New("unknown modifier")
	// ErrPreconditionFailed signals an operation attempted without its prerequisites.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrEndpointRequired signals an empty or unparseable engine endpoint.
	ErrEndpointRequired = fmt.Errorf("%w: search engine endpoint is required", ErrPreconditionFailed)
	// ErrBodyConsumed signals a second read of a one-shot response body.
	ErrBodyConsumed = errors.New("response body already consumed")
	// ErrUnknownRecordClass signals a record class missing from the records table.
	ErrUnknownRecordClass = errors.New("unknown record class")
	// ErrRecordNotFound signals a missing record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrJobFailed signals a job whose write was rejected by the engine.
	ErrJobFailed = errors.New("job failed")
	// ErrInvalidRequest signals caller input rejected before reaching the engine.
	ErrInvalidRequest = errors.New("invalid request")
)

// EngineError carries the status, reason and optional message of an engine failure.
type EngineError struct {
	Status  int
	Reason  string
	Message string
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d - %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("%d - %s, %s", e.Status, e.Reason, e.Message)
}

func (e *EngineError) Unwrap() error { return ErrEngine }

// NewEngineError creates an engine error.
func NewEngineError(status int, reason, message string) error {
	return &EngineError{Status: status, Reason: reason, Message: message}
}
