package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failing collaborator while the engine is reachable.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in a report.
const (
	ComponentEngine   = "solr"
	ComponentQueue    = "queue"
	ComponentDatabase = "database"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine EngineCheckerFactory
	queue  Pinger
	db     Pinger
}

// New creates a Service. queue and db can be nil when the worker side is disabled.
func New(engine EngineCheckerFactory, queue, db Pinger) *Service {
	return &Service{engine: engine, queue: queue, db: db}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if _, err := s.engine().ListCollections(ctx); err != nil {
		checks[ComponentEngine] = CheckError
	} else {
		checks[ComponentEngine] = CheckOK
	}
	if s.queue != nil {
		checks[ComponentQueue] = ping(ctx, s.queue)
	}
	if s.db != nil {
		checks[ComponentDatabase] = ping(ctx, s.db)
	}

	if checks[ComponentEngine] == CheckError {
		return Report{Status: Unhealthy, Checks: checks}
	}
	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
