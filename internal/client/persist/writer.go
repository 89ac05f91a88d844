// Package persist applies fire-and-forget snapshot writes to the local
// key-value store.
//
// Stores mutate their in-memory state first and then Schedule the new
// snapshot. A single background goroutine applies writes in the order keys
// were first scheduled; scheduling a key that is still queued replaces the
// queued value, so only the latest snapshot of a key is ever written and two
// writes of one key can never land out of order.
package persist

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophershop/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophershop/internal/logging"
)

type write struct {
	value  string
	delete bool
}

// Writer is safe for concurrent use.
type Writer struct {
	store  kv.Repository
	logger logging.Logger

	mu      sync.Mutex
	pending map[string]write
	queue   []string
	busy    bool
	closed  bool
	waiters []chan struct{}

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewWriter starts the background goroutine. Call Close to stop it.
func NewWriter(store kv.Repository, logger logging.Logger) *Writer {
	w := &Writer{
		store:   store,
		logger:  logger,
		pending: make(map[string]write),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Schedule queues key=value.
func (w *Writer) Schedule(key, value string) {
	w.enqueue(key, write{value: value})
}

// ScheduleDelete queues the removal of key.
func (w *Writer) ScheduleDelete(key string) {
	w.enqueue(key, write{delete: true})
}

func (w *Writer) enqueue(key string, op write) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn(context.Background(), "write dropped after close", "key", key)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.queue = append(w.queue, key)
	}
	w.pending[key] = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every write scheduled before the call has been applied
// or ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.queue) == 0 && !w.busy {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies the remaining queued writes and stops the goroutine.
// Schedule after Close drops the write.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		w.drain()
		select {
		case <-w.wake:
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.busy = false
			waiters := w.waiters
			w.waiters = nil
			w.mu.Unlock()
			for _, ch := range waiters {
				close(ch)
			}
			return
		}
		key := w.queue[0]
		w.queue = w.queue[1:]
		op := w.pending[key]
		delete(w.pending, key)
		w.busy = true
		w.mu.Unlock()

		w.apply(key, op)
	}
}

func (w *Writer) apply(key string, op write) {
	ctx := context.Background()
	var err error
	if op.delete {
		err = w.store.Delete(ctx, key)
	} else {
		err = w.store.Set(ctx, key, op.value)
	}
	if err != nil {
		// in-memory state stays authoritative; the next snapshot retries
		w.logger.Error(ctx, "persist snapshot", "key", key, "error", err)
		return
	}
	w.logger.Debug(ctx, "snapshot persisted", "key", key, "delete", op.delete)
}
