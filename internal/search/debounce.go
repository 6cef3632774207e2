// Package search provides the debounced dispatcher behind the
// search-as-you-type inputs of the purchase and sale dialogs.
//
// Each input event arms a timer; only the last-armed timer, if it fires
// uncancelled, forwards the lookup to the backend. Every armed event gets
// a monotonically increasing sequence number, and a result is delivered
// only while its sequence is still the newest, so a slow response can
// never overwrite the results of a newer query.
package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded reports that newer input arrived before this lookup could
// be dispatched, or before its result could be delivered.
var ErrSuperseded = errors.New("search: superseded by newer input")

// Debouncer serialises lookups for one search input.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	seq       uint64
	delivered uint64
	cancel    context.CancelFunc
}

// NewDebouncer returns a Debouncer with the given idle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do registers one input event and blocks until the debounce window closes.
// If no newer event arrives within the delay, fn runs with a context that
// is cancelled by any later event. Returns ErrSuperseded when the event
// lost to newer input at any stage.
func (d *Debouncer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	delay := d.delay
	d.mu.Unlock()
	// Release the derived context once this event is resolved, win or lose.
	defer cancel()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		if d.isSuperseded(seq) {
			return ErrSuperseded
		}
		return ctx.Err()
	case <-timer.C:
	}
	if d.isSuperseded(seq) {
		return ErrSuperseded
	}

	err := fn(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq || seq <= d.delivered {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	d.delivered = seq
	return nil
}

// Reset cancels any pending dispatch, for dialog close.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) isSuperseded(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return seq != d.seq
}
