package health

import "context"

// DBPinger checks session store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker checks search engine availability.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}
