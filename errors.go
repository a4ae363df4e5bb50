package solrdex

import "github.com/kailas-cloud/solrdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport          = domain.ErrTransport
	ErrUnknownStatus      = domain.ErrUnknownStatus
	ErrMalformedResponse  = domain.ErrMalformedResponse
	ErrEngine             = domain.ErrEngine
	ErrProtocol           = domain.ErrProtocol
	ErrUnknownModifier    = domain.ErrUnknownModifier
	ErrPreconditionFailed = domain.ErrPreconditionFailed
	ErrEndpointRequired   = domain.ErrEndpointRequired
	ErrInvalidRequest     = domain.ErrInvalidRequest
)

// EngineError carries the status, reason and message of a Solr failure.
// Use errors.As() to inspect it.
type EngineError = domain.EngineError
