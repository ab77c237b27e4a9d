package volumes

import (
	"context"
	"log"
	"sync"
	"time"
)

// Lister enumerates currently mounted, externally-attached volumes. The
// concrete backend is OS-specific (see posix_lister.go); tests substitute a
// static fake. Internal volumes (the system disk) must already be filtered
// out by the implementation — the watcher only drops volumes that have no
// stable identifier; it does not consult the drives' excluded flag.
type Lister interface {
	List(ctx context.Context) ([]MountInfo, error)
}

// Config controls polling cadence. The source's Docker events client used a
// push subscription; removable-volume mount tables have no portable push
// API in the standard library or the retrieval pack, so the watcher polls
// instead (see DESIGN.md).
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns a poll interval short enough that a USB insertion
// feels immediate without busy-polling the mount table.
func DefaultConfig() Config {
	return Config{PollInterval: 2 * time.Second}
}

// Watcher emits Mounted/Unmounted events and answers best-effort mount-path
// lookups (spec.md §4.2).
type Watcher struct {
	lister Lister
	config Config
	logger *log.Logger

	events chan Event

	mu      sync.RWMutex
	current map[string]MountInfo

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a volume watcher over the given lister.
func New(lister Lister, config Config, logger *log.Logger) *Watcher {
	return &Watcher{
		lister:  lister,
		config:  config,
		logger:  logger,
		events:  make(chan Event, 64),
		current: make(map[string]MountInfo),
	}
}

// Events returns the channel of mount/unmount notifications.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.config.PollInterval)
		defer ticker.Stop()

		w.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll(ctx)
			}
		}
	}()
}

// Stop cancels the poll loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// Resolve is a best-effort lookup over currently mounted volumes.
func (w *Watcher) Resolve(volumeID string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	info, ok := w.current[volumeID]
	if !ok {
		return "", false
	}
	return info.MountPath, true
}

// IsConnected reports whether volumeID is presently mounted — the Search
// Service (C8) uses this to annotate results with drive connectivity.
func (w *Watcher) IsConnected(volumeID string) bool {
	_, ok := w.Resolve(volumeID)
	return ok
}

// poll lists the current mount set and diffs it against what was last
// observed, emitting events in listing order — the closest approximation
// to "OS order" a polling backend can offer.
func (w *Watcher) poll(ctx context.Context) {
	observed, err := w.lister.List(ctx)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("[WARN] volume watcher: list mounts: %v", err)
		}
		return
	}

	seen := make(map[string]bool, len(observed))

	w.mu.Lock()
	for _, info := range observed {
		if info.ID == "" {
			// A mounted volume without a stable identifier cannot be
			// re-identified across remounts; ignore it.
			continue
		}
		seen[info.ID] = true
		prev, existed := w.current[info.ID]
		w.current[info.ID] = info
		if !existed {
			w.emit(Event{Kind: Mounted, Volume: info, Timestamp: time.Now()})
		} else if prev != info {
			// Capacity or display name changed while still mounted; treat
			// as a fresh Mounted observation so the orchestrator refreshes
			// the drive registry row.
			w.emit(Event{Kind: Mounted, Volume: info, Timestamp: time.Now()})
		}
	}
	for id, info := range w.current {
		if !seen[id] {
			delete(w.current, id)
			w.emit(Event{Kind: Unmounted, Volume: info, Timestamp: time.Now()})
		}
	}
	w.mu.Unlock()
}

func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
		if w.logger != nil {
			w.logger.Printf("[WARN] volume watcher: event channel full, dropping %v for %s", e.Kind, e.Volume.ID)
		}
	}
}
