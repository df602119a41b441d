package workers

import (
	"context"
	"log"
	"time"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// Exporter assembles the full snapshot to persist.
type Exporter interface {
	Export(ctx context.Context) (*domain.Snapshot, error)
}

// SnapshotWorker writes full snapshots to the snapshot store off the
// hot path. Services nudge it after durable mutations; a slow interval
// tick catches anything that slipped through. Saving is best-effort:
// failures are logged and the next nudge retries.
type SnapshotWorker struct {
	exporter Exporter
	store    domain.SnapshotStore
	jobs     chan struct{}
	interval time.Duration
}

func NewSnapshotWorker(exporter Exporter, store domain.SnapshotStore) *SnapshotWorker {
	return &SnapshotWorker{
		exporter: exporter,
		store:    store,
		jobs:     make(chan struct{}, 16),
		interval: 2 * time.Minute,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Snapshot Worker started in background...")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.jobs:
				w.persist(ctx)
			case <-ticker.C:
				w.persist(ctx)
			case <-ctx.Done():
				log.Println("Snapshot Worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue requests a snapshot write without blocking the caller. A
// full queue is fine: a write is already pending.
func (w *SnapshotWorker) Enqueue() {
	select {
	case w.jobs <- struct{}{}:
	default:
	}
}

func (w *SnapshotWorker) persist(ctx context.Context) {
	snap, err := w.exporter.Export(ctx)
	if err != nil {
		log.Printf("Snapshot Worker: export failed: %v", err)
		return
	}

	if err := w.store.Save(ctx, snap); err != nil {
		log.Printf("Snapshot Worker: save failed: %v", err)
	}
}
