package db

import "errors"

// Sentinel errors for backend operations.
var (
	ErrBadPayload = errors.New("db: malformed job payload")
)

// Op constants name the backend command for error context.
const (
	OpPing   = "PING"
	OpLPush  = "LPUSH"
	OpBRPop  = "BRPOP"
	OpLLen   = "LLEN"
	OpCount  = "SELECT COUNT"
	OpSelect = "SELECT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
