package search_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almacen-console/almacen-console/internal/search"
	_ "github.com/almacen-console/almacen-console/testing"
)

func TestRapidKeystrokesDispatchOnce(t *testing.T) {
	d := search.NewDebouncer(80 * time.Millisecond)

	var dispatched atomic.Int32
	var lastQuery atomic.Value
	var wg sync.WaitGroup
	results := make([]error, 3)

	// Three keystrokes well inside the debounce window.
	for i, q := range []string{"a", "ab", "abc"} {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i] = d.Do(context.Background(), func(ctx context.Context) error {
				dispatched.Add(1)
				lastQuery.Store(q)
				return nil
			})
		}(i, q)
		time.Sleep(15 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, int32(1), dispatched.Load())
	assert.Equal(t, "abc", lastQuery.Load())
	assert.ErrorIs(t, results[0], search.ErrSuperseded)
	assert.ErrorIs(t, results[1], search.ErrSuperseded)
	assert.NoError(t, results[2])
}

func TestStaleResponseDiscarded(t *testing.T) {
	d := search.NewDebouncer(5 * time.Millisecond)

	inFlight := make(chan struct{})
	release := make(chan struct{})

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		firstErr = d.Do(context.Background(), func(ctx context.Context) error {
			close(inFlight)
			<-release
			return nil
		})
	}()

	// Wait until the first lookup is on the wire, then type again.
	<-inFlight
	secondErr := d.Do(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, secondErr)

	close(release)
	<-done
	// The first response arrived after a newer request was dispatched.
	assert.ErrorIs(t, firstErr, search.ErrSuperseded)
}

func TestWinningContextReleasedAfterDelivery(t *testing.T) {
	d := search.NewDebouncer(time.Millisecond)

	var got context.Context
	err := d.Do(context.Background(), func(ctx context.Context) error {
		got = ctx
		return nil
	})
	require.NoError(t, err)
	// The derived context must not outlive the call it served.
	assert.ErrorIs(t, got.Err(), context.Canceled)
}

func TestLookupErrorPropagates(t *testing.T) {
	d := search.NewDebouncer(time.Millisecond)
	wantErr := assert.AnError
	err := d.Do(context.Background(), func(ctx context.Context) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestResetCancelsPending(t *testing.T) {
	d := search.NewDebouncer(time.Hour)

	var dispatched atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- d.Do(context.Background(), func(ctx context.Context) error {
			dispatched.Add(1)
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	d.Reset()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, search.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("pending dispatch was not cancelled")
	}
	assert.Equal(t, int32(0), dispatched.Load())
}
