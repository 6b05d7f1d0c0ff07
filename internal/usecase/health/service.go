// Package health aggregates component health checks.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Ships  int
}

// Service coordinates health checks.
type Service struct {
	corpus CorpusChecker
	cache  CachePinger
}

// New creates a Service. cache can be nil.
func New(corpus CorpusChecker, cache CachePinger) *Service {
	return &Service{corpus: corpus, cache: cache}
}

// Check runs health checks against all components. An unloaded corpus is
// fatal; a failing cache only degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	ships := 0
	if s.corpus != nil {
		ships = s.corpus.Len()
	}
	if ships > 0 {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	if checks["corpus"] == CheckError {
		status = Unhealthy
	} else if checks["cache"] == CheckError {
		status = Degraded
	}

	return Report{Status: status, Checks: checks, Ships: ships}
}
