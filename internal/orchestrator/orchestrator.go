package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/volumedex/volumedex/internal/notifier"
	"github.com/volumedex/volumedex/internal/scanner"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/volumes"
)

// MetricsRecorder receives scan telemetry; nil by default.
type MetricsRecorder interface {
	ScanStarted(mode string)
	ScanFinished(mode string, duration time.Duration, entries int64, err error, recoverable bool)
}

// VolumeRepository is the subset of internal/store.VolumeRepository the
// orchestrator needs to decide full vs. delta mode.
type VolumeRepository interface {
	GetVolume(id string) (*store.Volume, error)
}

// StoreMaintainer is the subset of internal/store.Store the orchestrator
// drives after a scan completes or a recoverable error is observed.
type StoreMaintainer interface {
	Optimize() error
	Recover() error
}

// Scanner is the subset of internal/scanner.Scanner the orchestrator
// drives.
type Scanner interface {
	ScanFull(ctx context.Context, volumeID, rootPath string, progress chan<- scanner.ProgressUpdate) (int64, error)
	ScanDelta(ctx context.Context, volumeID, rootPath string, progress chan<- scanner.ProgressUpdate) (scanner.DeltaResult, error)
}

// BackgroundTask is satisfied by internal/hasher.Hasher and
// internal/thumbnails.Cache's Run method — both drain a work queue to
// empty or until canceled.
type BackgroundTask interface {
	Run(ctx context.Context) error
}

// UserNotifier is the external user-notification collaborator (spec.md
// §6 "a user-notification API (title, body, optional sound)").
type UserNotifier interface {
	Notify(title, body string) error
}

// Orchestrator serializes scan work per volume and drives the post-scan
// pipeline (spec.md §4.5).
type Orchestrator struct {
	volumeWatcher *volumes.Watcher
	notifier      *notifier.Notifier
	scanner       Scanner
	volumeRepo    VolumeRepository
	maintainer    StoreMaintainer
	hasher        BackgroundTask
	thumbnails    BackgroundTask
	userNotifier  UserNotifier
	config        Config
	logger        *log.Logger
	metrics       MetricsRecorder

	progress    chan ProgressEvent
	completions chan CompletionEvent
	driveEvents chan volumes.Event

	mu       sync.Mutex
	inFlight map[string]*scanRun
	deltaSum int

	hasherMu     sync.Mutex
	hasherActive bool
	thumbsMu     sync.Mutex
	thumbsActive bool
}

type scanRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an orchestrator wired to its collaborators.
func New(
	volumeWatcher *volumes.Watcher,
	notif *notifier.Notifier,
	scan Scanner,
	volumeRepo VolumeRepository,
	maintainer StoreMaintainer,
	hasher BackgroundTask,
	thumbnails BackgroundTask,
	userNotifier UserNotifier,
	config Config,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		volumeWatcher: volumeWatcher,
		notifier:      notif,
		scanner:       scan,
		volumeRepo:    volumeRepo,
		maintainer:    maintainer,
		hasher:        hasher,
		thumbnails:    thumbnails,
		userNotifier:  userNotifier,
		config:        config,
		logger:        logger,
		progress:      make(chan ProgressEvent, 128),
		completions:   make(chan CompletionEvent, 32),
		driveEvents:   make(chan volumes.Event, 64),
		inFlight:      make(map[string]*scanRun),
	}
}

// SetMetrics attaches a metrics recorder; optional, defaults to a no-op.
func (o *Orchestrator) SetMetrics(m MetricsRecorder) { o.metrics = m }

// ErrVolumeNotConnected is returned by RequestScan when the volume is not
// currently mounted.
var ErrVolumeNotConnected = errors.New("orchestrator: volume not currently mounted")

// RequestScan triggers an on-demand scan of volumeID, as if a mount or
// change-notification event had just requested one (spec.md §4.5). It
// returns ErrVolumeNotConnected if the volume isn't currently resolvable
// through the volume watcher.
func (o *Orchestrator) RequestScan(volumeID string) error {
	mountPath, ok := o.volumeWatcher.Resolve(volumeID)
	if !ok {
		return ErrVolumeNotConnected
	}
	o.requestScan(volumeID, mountPath)
	return nil
}

// IsScanning reports whether volumeID currently has a scan in flight.
func (o *Orchestrator) IsScanning(volumeID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inFlight[volumeID]
	return ok
}

// Progress returns the channel of forwarded scan progress events.
func (o *Orchestrator) Progress() <-chan ProgressEvent { return o.progress }

// Completions returns the channel of scan completion events.
func (o *Orchestrator) Completions() <-chan CompletionEvent { return o.completions }

// DriveEvents returns the channel of volume mount/unmount transitions,
// forwarded after the orchestrator has already acted on them (subscribing
// or unsubscribing the change notifier, starting or canceling a scan) so a
// UI consumer never observes a drive event ahead of the orchestrator's own
// state transition.
func (o *Orchestrator) DriveEvents() <-chan volumes.Event { return o.driveEvents }

// Run drives the orchestrator's event loop until ctx is canceled: mount
// events request scans and (un)subscribe the change notifier; detected
// changes request delta scans.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-o.volumeWatcher.Events():
			if !ok {
				return
			}
			o.handleVolumeEvent(ev)
		case changes, ok := <-o.notifier.Changes():
			if !ok {
				return
			}
			o.handleChangesDetected(changes)
		}
	}
}

func (o *Orchestrator) handleVolumeEvent(ev volumes.Event) {
	switch ev.Kind {
	case volumes.Mounted:
		if err := o.notifier.Subscribe(ev.Volume.ID, ev.Volume.MountPath); err != nil && o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: change stream subscribe failed for %s: %v", ev.Volume.ID, err)
		}
		o.requestScan(ev.Volume.ID, ev.Volume.MountPath)
	case volumes.Unmounted:
		o.notifier.Unsubscribe(ev.Volume.ID)
		o.cancelScan(ev.Volume.ID)
	}

	select {
	case o.driveEvents <- ev:
	default:
		if o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: drive event channel full, dropping event for %s", ev.Volume.ID)
		}
	}
}

func (o *Orchestrator) handleChangesDetected(changes notifier.ChangesDetected) {
	mountPath, ok := o.volumeWatcher.Resolve(changes.VolumeID)
	if !ok {
		return
	}
	o.requestScan(changes.VolumeID, mountPath)
}

// requestScan enforces per-volume serialization (spec.md §5): a request
// for a volume already scanning cancels the in-flight run and starts the
// new one once it has fully stopped.
func (o *Orchestrator) requestScan(volumeID, mountPath string) {
	o.mu.Lock()
	if run, ok := o.inFlight[volumeID]; ok {
		run.cancel()
		o.mu.Unlock()
		go func() {
			<-run.done
			o.startScan(volumeID, mountPath)
		}()
		return
	}
	o.mu.Unlock()
	go o.startScan(volumeID, mountPath)
}

func (o *Orchestrator) cancelScan(volumeID string) {
	o.mu.Lock()
	run, ok := o.inFlight[volumeID]
	o.mu.Unlock()
	if ok {
		run.cancel()
	}
}

func (o *Orchestrator) startScan(volumeID, mountPath string) {
	ctx, cancel := context.WithCancel(context.Background())
	run := &scanRun{cancel: cancel, done: make(chan struct{})}

	o.mu.Lock()
	o.inFlight[volumeID] = run
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		if o.inFlight[volumeID] == run {
			delete(o.inFlight, volumeID)
		}
		o.mu.Unlock()
		close(run.done)
	}()

	o.runWithRecovery(ctx, volumeID, mountPath)
}

func (o *Orchestrator) runWithRecovery(ctx context.Context, volumeID, mountPath string) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.ScanStarted(scanMode(ctx, o, volumeID))
	}

	count, wasFull, changed, err := o.runOnce(ctx, volumeID, mountPath)
	if err != nil && isRecoverable(err) {
		if recErr := o.maintainer.Recover(); recErr != nil {
			if o.logger != nil {
				o.logger.Printf("[WARN] orchestrator: recover() failed for %s: %v", volumeID, recErr)
			}
		} else {
			count, wasFull, changed, err = o.runOnce(ctx, volumeID, mountPath)
		}
	}

	mode := "delta"
	if wasFull {
		mode = "full"
	}
	if o.metrics != nil {
		o.metrics.ScanFinished(mode, time.Since(start), count, err, err != nil && isRecoverable(err))
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.completions <- CompletionEvent{VolumeID: volumeID, Err: err}
			return
		}
		o.notify(fmt.Sprintf("Scan failed: %s", volumeID), err.Error())
		o.completions <- CompletionEvent{VolumeID: volumeID, Err: err}
		return
	}

	o.afterScanSuccess(wasFull, changed)
	o.notify(fmt.Sprintf("Scan complete: %s", volumeID), fmt.Sprintf("%d files indexed", count))
	o.completions <- CompletionEvent{VolumeID: volumeID, FileCount: count}

	o.triggerHasher()
	o.triggerThumbnails()
}

// scanMode reports the mode a scan will run in, before it runs, purely for
// the "started" metric label (runOnce decides the real mode from
// Volume.LastScan and may disagree if the volume is deleted mid-flight,
// which only affects the ScanFinished label).
func scanMode(ctx context.Context, o *Orchestrator, volumeID string) string {
	vol, err := o.volumeRepo.GetVolume(volumeID)
	if err != nil || vol == nil || vol.LastScan == nil {
		return "full"
	}
	return "delta"
}

// runOnce selects full or delta mode from Volume.last_scan_date and runs
// it, forwarding progress events tagged with volumeID.
func (o *Orchestrator) runOnce(ctx context.Context, volumeID, mountPath string) (count int64, wasFull bool, changed int, err error) {
	vol, err := o.volumeRepo.GetVolume(volumeID)
	if err != nil {
		return 0, false, 0, err
	}

	raw := make(chan scanner.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range raw {
			select {
			case o.progress <- ProgressEvent{VolumeID: volumeID, ProgressUpdate: p}:
			default:
			}
		}
	}()

	if vol == nil || vol.LastScan == nil {
		count, err = o.scanner.ScanFull(ctx, volumeID, mountPath, raw)
		close(raw)
		wg.Wait()
		return count, true, 0, err
	}

	result, err := o.scanner.ScanDelta(ctx, volumeID, mountPath, raw)
	close(raw)
	wg.Wait()
	return result.Observed, false, result.Changed, err
}

func (o *Orchestrator) afterScanSuccess(wasFull bool, changed int) {
	if wasFull {
		if err := o.maintainer.Optimize(); err != nil && o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: optimize after full scan: %v", err)
		}
		return
	}

	o.mu.Lock()
	o.deltaSum += changed
	cross := o.deltaSum >= o.config.OptimizeThreshold
	if cross {
		o.deltaSum = 0
	}
	o.mu.Unlock()

	if cross {
		if err := o.maintainer.Optimize(); err != nil && o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: optimize after threshold crossed: %v", err)
		}
	}
}

// triggerHasher starts the hasher if it isn't already running; idempotent
// per spec.md §4.5.
func (o *Orchestrator) triggerHasher() {
	if o.hasher == nil {
		return
	}
	o.hasherMu.Lock()
	if o.hasherActive {
		o.hasherMu.Unlock()
		return
	}
	o.hasherActive = true
	o.hasherMu.Unlock()

	go func() {
		defer func() {
			o.hasherMu.Lock()
			o.hasherActive = false
			o.hasherMu.Unlock()
		}()
		if err := o.hasher.Run(context.Background()); err != nil && o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: hasher run: %v", err)
		}
	}()
}

// triggerThumbnails starts the thumbnail filler if it isn't already
// running; idempotent per spec.md §4.5.
func (o *Orchestrator) triggerThumbnails() {
	if o.thumbnails == nil {
		return
	}
	o.thumbsMu.Lock()
	if o.thumbsActive {
		o.thumbsMu.Unlock()
		return
	}
	o.thumbsActive = true
	o.thumbsMu.Unlock()

	go func() {
		defer func() {
			o.thumbsMu.Lock()
			o.thumbsActive = false
			o.thumbsMu.Unlock()
		}()
		if err := o.thumbnails.Run(context.Background()); err != nil && o.logger != nil {
			o.logger.Printf("[WARN] orchestrator: thumbnail fill run: %v", err)
		}
	}()
}

func (o *Orchestrator) notify(title, body string) {
	if o.userNotifier == nil {
		return
	}
	if err := o.userNotifier.Notify(title, body); err != nil && o.logger != nil {
		o.logger.Printf("[WARN] orchestrator: user notification failed: %v", err)
	}
}

func isRecoverable(err error) bool {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr.Recoverable()
	}
	return false
}
