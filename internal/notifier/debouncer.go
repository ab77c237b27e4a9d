package notifier

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/volumedex/volumedex/internal/utils"
)

// Notifier fans out ChangesDetected events for every subscribed volume.
// Each subscription owns its own fsnotify watcher and debounce state; no
// state crosses volume boundaries (spec.md §5 "no shared mutable state
// crosses a component boundary").
type Notifier struct {
	config  Config
	filters Filters
	logger  *log.Logger

	out chan ChangesDetected

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	volumeID string
	rootPath string
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a notifier. Call Subscribe per mounted, non-excluded volume
// and Unsubscribe on unmount.
func New(config Config, filters Filters, logger *log.Logger) *Notifier {
	return &Notifier{
		config:  config,
		filters: filters,
		logger:  logger,
		out:     make(chan ChangesDetected, 32),
		subs:    make(map[string]*subscription),
	}
}

// Changes returns the channel of coalesced change notifications.
func (n *Notifier) Changes() <-chan ChangesDetected {
	return n.out
}

// Subscribe starts watching rootPath for volumeID. If a subscription
// already exists for volumeID it is replaced.
func (n *Notifier) Subscribe(volumeID, rootPath string) error {
	n.Unsubscribe(volumeID)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Non-fatal per spec.md §7: indexing continues without live
		// updates; the next mount event re-subscribes.
		return utils.WrapErrorf(err, "create change stream for volume %s", volumeID)
	}

	if err := addRecursive(watcher, rootPath, n.filters); err != nil {
		watcher.Close()
		return utils.WrapErrorf(err, "watch volume %s", volumeID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{volumeID: volumeID, rootPath: rootPath, watcher: watcher, cancel: cancel, done: make(chan struct{})}

	n.mu.Lock()
	n.subs[volumeID] = sub
	n.mu.Unlock()

	go n.run(ctx, sub)
	return nil
}

// Unsubscribe cancels a volume's pending timer, discards its buffer, and
// closes its change stream.
func (n *Notifier) Unsubscribe(volumeID string) {
	n.mu.Lock()
	sub, ok := n.subs[volumeID]
	if ok {
		delete(n.subs, volumeID)
	}
	n.mu.Unlock()

	if !ok {
		return
	}
	sub.cancel()
	sub.watcher.Close()
	<-sub.done
}

// run owns one volume's debounce state machine: buffer the union of
// filtered event paths, reset the quiet-period timer on every new event,
// and emit exactly one ChangesDetected once the timer elapses.
func (n *Notifier) run(ctx context.Context, sub *subscription) {
	defer close(sub.done)

	buffer := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sub.watcher.Events:
			if !ok {
				return
			}
			path, relevant := filterEvent(ev, n.filters)
			if !relevant {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				n.maybeWatchNewDirectory(sub.watcher, ev.Name)
			}
			buffer[path] = true
			stopTimer()
			timer = time.NewTimer(n.config.DebounceDelay)
			timerC = timer.C

		case err, ok := <-sub.watcher.Errors:
			if !ok {
				return
			}
			if n.logger != nil {
				n.logger.Printf("[WARN] notifier: volume %s change stream error: %v", sub.volumeID, err)
			}

		case <-timerC:
			timerC = nil
			if len(buffer) == 0 {
				continue
			}
			paths := buffer
			buffer = make(map[string]bool)
			n.emit(ChangesDetected{VolumeID: sub.volumeID, Paths: paths})
		}
	}
}

func (n *Notifier) emit(c ChangesDetected) {
	select {
	case n.out <- c:
	default:
		if n.logger != nil {
			n.logger.Printf("[WARN] notifier: output channel full, dropping changes for volume %s", c.VolumeID)
		}
	}
}

// maybeWatchNewDirectory extends the watch set when a new, non-excluded
// directory appears mid-session — fsnotify watches are not recursive.
func (n *Notifier) maybeWatchNewDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := osStat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if isExcludedDir(filepath.Base(path), n.filters) {
		return
	}
	_ = watcher.Add(path)
}

// filterEvent applies spec.md §4.3's relevance and exclusion rules.
// Returns the path to buffer and whether the event should be kept.
func filterEvent(ev fsnotify.Event, filters Filters) (string, bool) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	if isExcludedPath(ev.Name, filters) {
		return "", false
	}
	return ev.Name, true
}

func isExcludedPath(path string, filters Filters) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if isExcludedDir(part, filters) {
			return true
		}
	}
	leaf := filepath.Base(path)
	for suffix := range filters.ExcludedSuffixes {
		if strings.HasSuffix(leaf, suffix) {
			return true
		}
	}
	return false
}

func isExcludedDir(name string, filters Filters) bool {
	return filters.ExcludedDirectories[name]
}

// addRecursive registers a watch on rootPath and every non-excluded
// descendant directory.
func addRecursive(watcher *fsnotify.Watcher, rootPath string, filters Filters) error {
	return walkDirs(rootPath, filters, func(dir string) error {
		return watcher.Add(dir)
	})
}
