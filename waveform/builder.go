package waveform

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("waveform builder closed")

type (
	// Builder generates mipmaps on a pool of worker goroutines and publishes
	// them to a Store. Callers hand over the raw data and get the result
	// through the store's subscriptions; the raw data must not be modified
	// after Submit.
	Builder struct {
		store    *Store
		requests chan request
		group    *errgroup.Group
		ctx      context.Context
		cancel   context.CancelFunc

		mu     sync.RWMutex
		closed bool
	}

	request struct {
		trackID string
		raw     []float32
	}
)

// NewBuilder starts workers goroutines that live until Close is called or
// ctx is cancelled.
func NewBuilder(ctx context.Context, store *Store, workers int) *Builder {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	b := &Builder{
		store:    store,
		requests: make(chan request, 64),
		group:    g,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < max(workers, 1); i++ {
		g.Go(b.work)
	}
	return b
}

func (b *Builder) work() error {
	for {
		select {
		case <-b.ctx.Done():
			return nil
		case req, ok := <-b.requests:
			if !ok {
				return nil
			}
			m := Generate(req.raw)
			if b.ctx.Err() != nil {
				return nil
			}
			b.store.Publish(req.trackID, m)
		}
	}
}

// Submit queues the raw data of a track for generation. It blocks while the
// queue is full, until ctx is done.
func (b *Builder) Submit(ctx context.Context, trackID string, raw []float32) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.requests <- request{trackID: trackID, raw: raw}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.ctx.Done():
		return ErrClosed
	}
}

// Close stops accepting requests, lets the workers finish the queued ones
// and waits for them to exit.
func (b *Builder) Close() error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.requests)
	}
	b.mu.Unlock()
	err := b.group.Wait()
	b.cancel()
	return err
}
