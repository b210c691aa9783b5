package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	calls atomic.Int32
	panic bool
}

func (r *countingRunner) Run(ctx context.Context, req DispatchRequest) (DispatchSummary, error) {
	r.calls.Add(1)
	if r.panic {
		panic("boom")
	}
	return DispatchSummary{Total: 1}, nil
}

func TestSchedulerDisabled(t *testing.T) {
	r := &countingRunner{}
	done := make(chan struct{})
	go func() {
		NewReminderScheduler(r, 0, discardLogger()).Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler with zero interval did not return")
	}
	assert.Zero(t, r.calls.Load())
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	r := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewReminderScheduler(r, 10*time.Millisecond, discardLogger()).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSchedulerSurvivesPanic(t *testing.T) {
	r := &countingRunner{panic: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewReminderScheduler(r, 10*time.Millisecond, discardLogger()).Start(ctx)

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
