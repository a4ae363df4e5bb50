package health

import "context"

// Pinger checks a backend's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker checks the search engine by listing its collections.
type EngineChecker interface {
	ListCollections(ctx context.Context) ([]string, error)
}

// EngineCheckerFactory builds a fresh engine checker per check.
type EngineCheckerFactory func() EngineChecker
