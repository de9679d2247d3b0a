package coalesce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_DeduplicatesConcurrentCallers(t *testing.T) {
	g := NewGroup()
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	work := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "result", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := g.Do(context.Background(), "k", work)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	<-started
	// Give the remaining callers time to join the in-flight work before
	// letting it finish; a caller arriving after completion would re-run it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "work must execute exactly once for concurrent callers")
	for _, r := range results {
		assert.Equal(t, "result", r)
	}
}

func TestGroup_CallerCancellationDoesNotAffectPeers(t *testing.T) {
	g := NewGroup()
	release := make(chan struct{})
	work := func(ctx context.Context) (interface{}, error) {
		<-release
		return "done", nil
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancelledDone := make(chan error, 1)
	go func() {
		_, err := g.Do(cancelCtx, "k", work)
		cancelledDone <- err
	}()

	peerDone := make(chan interface{}, 1)
	go func() {
		v, err := g.Do(context.Background(), "k", work)
		require.NoError(t, err)
		peerDone <- v
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-cancelledDone
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	v := <-peerDone
	assert.Equal(t, "done", v)
}

func TestGroup_ReAttemptsAfterCompletion(t *testing.T) {
	g := NewGroup()
	var calls int32
	work := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom")
	}

	_, err1 := g.Do(context.Background(), "k", work)
	require.Error(t, err1)
	_, err2 := g.Do(context.Background(), "k", work)
	require.Error(t, err2)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "a call after completion must re-attempt, not replay a cached failure")
}

func TestGroup_WorkContextCancelledWhenAllWaitersLeave(t *testing.T) {
	g := NewGroup()
	workCancelled := make(chan struct{})
	entered := make(chan struct{})

	work := func(ctx context.Context) (interface{}, error) {
		close(entered)
		<-ctx.Done()
		close(workCancelled)
		return nil, ctx.Err()
	}

	callerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_, _ = g.Do(callerCtx, "k", work)
		close(done)
	}()

	<-entered
	cancel()
	<-done

	select {
	case <-workCancelled:
	case <-time.After(time.Second):
		t.Fatal("work context was not cancelled after the last waiter left")
	}
}
