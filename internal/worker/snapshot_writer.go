package worker

// snapshot_writer.go
// Background goroutine that writes the in-memory state through to the snapshot
// store. Core mutations signal it after their lock is released; signals
// coalesce, so a burst of sales costs one write. Failed writes stay dirty and
// are retried on the next tick through the circuit breaker.

import (
	"context"
	"sync"
	"time"

	"burgerpos/internal/infra"
	"burgerpos/internal/model"

	"github.com/rs/zerolog/log"
)

const defaultFlushInterval = 5 * time.Second

// Flusher writes the full state. service.SnapshotService satisfies it.
type Flusher interface {
	Flush(ctx context.Context) error
}

type SnapshotWriterConfig struct {
	Flusher  Flusher
	CB       *infra.CircuitBreaker
	Interval time.Duration
	// OnFlush is called after every attempt; used by metrics.
	OnFlush func(err error)
}

// SnapshotWriter implements service.ChangeSink.
type SnapshotWriter struct {
	cfg    SnapshotWriterConfig
	signal chan struct{}

	mu    sync.Mutex
	dirty bool
	done  chan struct{}
}

func NewSnapshotWriter(cfg SnapshotWriterConfig) *SnapshotWriter {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultFlushInterval
	}
	if cfg.CB == nil {
		cfg.CB = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	return &SnapshotWriter{
		cfg:    cfg,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Changed schedules a flush. Never blocks.
func (w *SnapshotWriter) Changed(ev model.Event) {
	if !ev.Mutates() {
		return
	}
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Dirty reports whether a change has not been written yet.
func (w *SnapshotWriter) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Start launches the writer. On ctx cancellation it makes one last attempt,
// bypassing the breaker, and closes Done.
func (w *SnapshotWriter) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", w.cfg.Interval).Msg("snapshot_writer: started")

		for {
			select {
			case <-ctx.Done():
				if w.Dirty() {
					flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					w.flush(flushCtx, false)
					cancel()
				}
				log.Info().Msg("snapshot_writer: shutting down")
				return
			case <-w.signal:
				w.flush(ctx, true)
			case <-ticker.C:
				if !w.Dirty() {
					continue
				}
				if w.cfg.CB.State() == infra.CBOpen {
					log.Debug().Msg("snapshot_writer: circuit breaker is open, skipping tick")
					continue
				}
				w.flush(ctx, true)
			}
		}
	}()
}

// Done is closed once the writer goroutine has exited.
func (w *SnapshotWriter) Done() <-chan struct{} { return w.done }

func (w *SnapshotWriter) flush(ctx context.Context, guarded bool) {
	// Cleared before the write: a change racing with it re-marks dirty.
	w.mu.Lock()
	w.dirty = false
	w.mu.Unlock()

	var err error
	if guarded {
		err = w.cfg.CB.Execute(func() error { return w.cfg.Flusher.Flush(ctx) })
	} else {
		err = w.cfg.Flusher.Flush(ctx)
	}
	if w.cfg.OnFlush != nil {
		w.cfg.OnFlush(err)
	}
	if err != nil {
		w.mu.Lock()
		w.dirty = true
		w.mu.Unlock()
		st := w.cfg.CB.Stats()
		log.Warn().Err(err).
			Str("breaker", st.State).
			Int("consecutive_failures", st.ConsecutiveFailures).
			Int64("rejected_writes", st.RejectedWrites).
			Msg("snapshot_writer: flush failed, will retry")
		return
	}
	log.Debug().Msg("snapshot_writer: flushed")
}
