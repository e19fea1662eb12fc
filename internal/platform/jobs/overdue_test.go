package jobs

import (
	"context"
	"errors"
	"testing"
)

type mockSweeper struct {
	calls int
	n     int
	err   error
}

func (m *mockSweeper) MarkOverdue(ctx context.Context) (int, error) {
	m.calls++
	return m.n, m.err
}

func TestNewOverdueRunner_ValidSpec(t *testing.T) {
	r, err := NewOverdueRunner("0 0 * * *", &mockSweeper{})
	if err != nil {
		t.Fatalf("expected valid spec to be accepted: %v", err)
	}
	if r == nil {
		t.Fatal("expected a runner")
	}
}

func TestNewOverdueRunner_InvalidSpec(t *testing.T) {
	for _, spec := range []string{"", "not a cron", "61 * * * *", "* * * *"} {
		if _, err := NewOverdueRunner(spec, &mockSweeper{}); err == nil {
			t.Errorf("expected spec %q to be rejected", spec)
		}
	}
}

func TestOverdueRunner_RunOnce(t *testing.T) {
	sweeper := &mockSweeper{n: 3}
	r, err := NewOverdueRunner("0 0 * * *", sweeper)
	if err != nil {
		t.Fatalf("NewOverdueRunner failed: %v", err)
	}

	r.runOnce()
	if sweeper.calls != 1 {
		t.Errorf("expected one sweep call, got %d", sweeper.calls)
	}
}

func TestOverdueRunner_RunOnce_SweepError(t *testing.T) {
	sweeper := &mockSweeper{err: errors.New("connection refused")}
	r, err := NewOverdueRunner("0 0 * * *", sweeper)
	if err != nil {
		t.Fatalf("NewOverdueRunner failed: %v", err)
	}

	// errors are logged, not propagated; the schedule keeps running
	r.runOnce()
	if sweeper.calls != 1 {
		t.Errorf("expected one sweep call, got %d", sweeper.calls)
	}
}

func TestOverdueRunner_StartStop(t *testing.T) {
	r, err := NewOverdueRunner("0 0 * * *", &mockSweeper{})
	if err != nil {
		t.Fatalf("NewOverdueRunner failed: %v", err)
	}
	r.Start()
	r.Stop()
}
