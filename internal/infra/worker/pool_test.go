//go:build !integration

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newPool(workers int) *Pool {
	l := zerolog.Nop()
	return NewPool(workers, &l)
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := newPool(4)
	pool.Start(ctx)
	defer pool.Stop()

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		task := func(context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&ran, 1)
			return nil
		}
		// The queue may fill faster than the workers drain it; back off
		// and resubmit instead of treating a full queue as a failure.
		for pool.Submit(task) != nil {
			time.Sleep(time.Millisecond)
		}
	}
	wg.Wait()

	if got := atomic.LoadInt32(&ran); got != 32 {
		t.Errorf("expected 32 tasks run, got %d", got)
	}
}

func TestPool_DropsWhenSaturated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := newPool(1)
	pool.Start(ctx)
	defer pool.Stop()

	release := make(chan struct{})
	blocker := func(context.Context) error {
		<-release
		return nil
	}
	// One task occupies the single worker; the queue holds workers*4.
	var dropped bool
	for i := 0; i < 16; i++ {
		if err := pool.Submit(blocker); err != nil {
			dropped = true
			break
		}
	}
	close(release)

	if !dropped {
		t.Error("a saturated pool must reject instead of blocking")
	}
}

func TestPool_RejectsNilTask(t *testing.T) {
	pool := newPool(1)
	if err := pool.Submit(nil); err == nil {
		t.Error("nil task must be rejected")
	}
}

func TestPool_StopWaitsForWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := newPool(2)
	pool.Start(ctx)

	var finished int32
	_ = pool.Submit(func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&finished, 1)
		return nil
	})
	time.Sleep(time.Millisecond) // let a worker pick the task up
	pool.Stop()

	if atomic.LoadInt32(&finished) != 1 {
		t.Error("Stop must wait for in-flight tasks")
	}
}
