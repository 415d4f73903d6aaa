package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type panickingWorker struct {
	runs     atomic.Int32
	finished chan struct{}
}

func (w *panickingWorker) Run(context.Context) error {
	if w.runs.Add(1) == 1 {
		panic("boom")
	}
	close(w.finished)
	return nil
}

func TestSupervisor_RestartsAfterPanic(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	worker := &panickingWorker{finished: make(chan struct{})}

	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(context.Background())
	}()

	// The worker panicked once, was restarted and then finished cleanly.
	select {
	case <-worker.finished:
	case <-time.After(2 * time.Second):
		req.Fail("worker was not restarted after panic")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not drain")
	}
	req.Equal(int32(2), worker.runs.Load())
}

type blockingWorker struct{}

func (blockingWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	sup := NewSupervisor(log)
	sup.Add(blockingWorker{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop")
	}
}

func TestSupervisor_StartAttachesDynamicWorker(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	sup := NewSupervisor(log)
	sup.Add(blockingWorker{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)

	// A processor spawned while Run is blocking joins the same lifecycle.
	dynamic := &panickingWorker{finished: make(chan struct{})}
	dynamic.runs.Store(1) // skip the panic, finish directly
	sup.Start(context.Background(), dynamic)

	select {
	case <-dynamic.finished:
	case <-time.After(2 * time.Second):
		req.Fail("dynamic worker did not run")
	}

	sup.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop")
	}
}
