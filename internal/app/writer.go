package app

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// snapshotWriter saves snapshots on one background goroutine. Only the most
// recent unsaved snapshot is kept; older pending ones are dropped.
type snapshotWriter struct {
	store   SnapshotPersister
	logger  *log.Logger
	pending chan []byte
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSnapshotWriter(store SnapshotPersister, logger *log.Logger) *snapshotWriter {
	w := &snapshotWriter{
		store:   store,
		logger:  logger,
		pending: make(chan []byte, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// submit replaces any pending snapshot with data. Callers serialize submits.
func (w *snapshotWriter) submit(data []byte) {
	for {
		select {
		case w.pending <- data:
			return
		default:
		}
		select {
		case <-w.pending:
		default:
		}
	}
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	for {
		select {
		case data := <-w.pending:
			w.save(data)
		case <-w.quit:
			select {
			case data := <-w.pending:
				w.save(data)
			default:
			}
			return
		}
	}
}

func (w *snapshotWriter) save(data []byte) {
	if err := w.store.Save(context.Background(), data); err != nil {
		w.logger.Error("snapshot save failed", "bytes", len(data), "err", err)
		return
	}
	w.logger.Debug("snapshot saved", "bytes", len(data))
}

// stop flushes the pending snapshot and waits for the goroutine to exit.
func (w *snapshotWriter) stop(ctx context.Context) error {
	w.once.Do(func() { close(w.quit) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
