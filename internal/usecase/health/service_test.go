package health

import (
	"context"
	"errors"
	"testing"
)

type mockCorpus struct{ n int }

func (m mockCorpus) Len() int { return m.n }

type mockCache struct{ err error }

func (m mockCache) Ping(context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(mockCorpus{n: 42}, mockCache{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if report.Checks["corpus"] != CheckOK || report.Checks["cache"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
	if report.Ships != 42 {
		t.Errorf("ships = %d", report.Ships)
	}
}

func TestCheck_CacheDownDegrades(t *testing.T) {
	svc := New(mockCorpus{n: 42}, mockCache{err: errors.New("connection refused")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["cache"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_EmptyCorpusIsFatal(t *testing.T) {
	svc := New(mockCorpus{n: 0}, mockCache{})

	report := svc.Check(context.Background())
	if report.Status != Unhealthy {
		t.Errorf("status = %q, want %q", report.Status, Unhealthy)
	}
}

func TestCheck_NilCacheSkipped(t *testing.T) {
	svc := New(mockCorpus{n: 1}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %q", report.Status)
	}
	if _, ok := report.Checks["cache"]; ok {
		t.Error("cache check must be skipped when no cache is configured")
	}
}
