package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/notifier"
	"github.com/volumedex/volumedex/internal/scanner"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/volumes"
)

type fakeVolumeRepo struct {
	mu  sync.Mutex
	vol *store.Volume
	err error
}

func (f *fakeVolumeRepo) GetVolume(id string) (*store.Volume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vol, f.err
}

type fakeMaintainer struct {
	mu            sync.Mutex
	optimizeCalls int
	recoverCalls  int
	recoverErr    error
}

func (f *fakeMaintainer) Optimize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optimizeCalls++
	return nil
}

func (f *fakeMaintainer) Recover() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recoverCalls++
	return f.recoverErr
}

type fakeScanner struct {
	mu         sync.Mutex
	fullCalls  int
	deltaCalls int
	fullErr    error
	deltaErr   error
	block      chan struct{}
}

func (s *fakeScanner) ScanFull(ctx context.Context, volumeID, rootPath string, progress chan<- scanner.ProgressUpdate) (int64, error) {
	s.mu.Lock()
	s.fullCalls++
	s.mu.Unlock()
	if progress != nil {
		progress <- scanner.ProgressUpdate{EntriesProcessed: 1, Done: true}
	}
	if s.block != nil {
		select {
		case <-ctx.Done():
			return 0, context.Canceled
		case <-s.block:
		}
	}
	return 10, s.fullErr
}

func (s *fakeScanner) ScanDelta(ctx context.Context, volumeID, rootPath string, progress chan<- scanner.ProgressUpdate) (scanner.DeltaResult, error) {
	s.mu.Lock()
	s.deltaCalls++
	s.mu.Unlock()
	if progress != nil {
		progress <- scanner.ProgressUpdate{EntriesProcessed: 1, Done: true}
	}
	return scanner.DeltaResult{Observed: 5, Changed: 3}, s.deltaErr
}

type fakeTask struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (t *fakeTask) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return t.err
}

type fakeNotifierTarget struct {
	mu    sync.Mutex
	sent  []string
	err   error
}

func (n *fakeNotifierTarget) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, title)
	return n.err
}

func newTestOrchestrator(scan Scanner, volRepo VolumeRepository, maintainer StoreMaintainer) *Orchestrator {
	vw := volumes.New(nil, volumes.DefaultConfig(), nil)
	notif := notifier.New(notifier.DefaultConfig(), notifier.DefaultFilters(), nil)
	return New(vw, notif, scan, volRepo, maintainer, nil, nil, nil, DefaultConfig(), nil)
}

func TestRunOnceSelectsFullModeWhenNeverScanned(t *testing.T) {
	s := &fakeScanner{}
	o := newTestOrchestrator(s, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, &fakeMaintainer{})

	count, wasFull, changed, err := o.runOnce(context.Background(), "vol-1", "/mnt/vol-1")
	require.NoError(t, err)
	assert.True(t, wasFull)
	assert.Equal(t, int64(10), count)
	assert.Equal(t, 0, changed)
	assert.Equal(t, 1, s.fullCalls)
	assert.Equal(t, 0, s.deltaCalls)
}

func TestRunOnceSelectsDeltaModeWhenPreviouslyScanned(t *testing.T) {
	s := &fakeScanner{}
	last := time.Now().Add(-time.Hour)
	o := newTestOrchestrator(s, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1", LastScan: &last}}, &fakeMaintainer{})

	count, wasFull, changed, err := o.runOnce(context.Background(), "vol-1", "/mnt/vol-1")
	require.NoError(t, err)
	assert.False(t, wasFull)
	assert.Equal(t, int64(5), count)
	assert.Equal(t, 3, changed)
	assert.Equal(t, 1, s.deltaCalls)
}

func TestAfterScanSuccessOptimizesUnconditionallyAfterFullScan(t *testing.T) {
	m := &fakeMaintainer{}
	o := newTestOrchestrator(&fakeScanner{}, &fakeVolumeRepo{}, m)

	o.afterScanSuccess(true, 0)
	assert.Equal(t, 1, m.optimizeCalls)
}

func TestAfterScanSuccessAccumulatesDeltaUntilThresholdCrossed(t *testing.T) {
	m := &fakeMaintainer{}
	o := newTestOrchestrator(&fakeScanner{}, &fakeVolumeRepo{}, m)
	o.config.OptimizeThreshold = 10

	o.afterScanSuccess(false, 4)
	assert.Equal(t, 0, m.optimizeCalls)
	o.afterScanSuccess(false, 4)
	assert.Equal(t, 0, m.optimizeCalls)
	o.afterScanSuccess(false, 4)
	assert.Equal(t, 1, m.optimizeCalls)
	assert.Equal(t, 0, o.deltaSum)
}

func TestRunWithRecoveryRetriesOnceOnRecoverableError(t *testing.T) {
	recoverable := &store.Error{Kind: store.ErrKindRecoverableCorruption, Op: "scan", Err: errors.New("malformed database")}
	s := &fakeScanner{fullErr: recoverable}
	m := &fakeMaintainer{}
	o := newTestOrchestrator(s, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, m)

	go o.runWithRecovery(context.Background(), "vol-1", "/mnt/vol-1")

	select {
	case ev := <-o.Completions():
		assert.Equal(t, "vol-1", ev.VolumeID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}

	assert.Equal(t, 1, m.recoverCalls)
	assert.Equal(t, 2, s.fullCalls)
}

func TestRunWithRecoverySucceedsTriggersHasherAndThumbnails(t *testing.T) {
	s := &fakeScanner{}
	hasher := &fakeTask{}
	thumbs := &fakeTask{}
	notif := &fakeNotifierTarget{}
	vw := volumes.New(nil, volumes.DefaultConfig(), nil)
	nf := notifier.New(notifier.DefaultConfig(), notifier.DefaultFilters(), nil)
	o := New(vw, nf, s, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, &fakeMaintainer{}, hasher, thumbs, notif, DefaultConfig(), nil)

	go o.runWithRecovery(context.Background(), "vol-1", "/mnt/vol-1")

	select {
	case ev := <-o.Completions():
		assert.Equal(t, int64(10), ev.FileCount)
		require.NoError(t, ev.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}

	require.Eventually(t, func() bool {
		hasher.mu.Lock()
		defer hasher.mu.Unlock()
		thumbs.mu.Lock()
		defer thumbs.mu.Unlock()
		return hasher.calls == 1 && thumbs.calls == 1
	}, time.Second, 10*time.Millisecond)

	notif.mu.Lock()
	defer notif.mu.Unlock()
	assert.Len(t, notif.sent, 1)
}

func TestRequestScanCancelsInFlightRunBeforeStartingNext(t *testing.T) {
	s := &fakeScanner{block: make(chan struct{})}
	o := newTestOrchestrator(s, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, &fakeMaintainer{})

	o.requestScan("vol-1", "/mnt/vol-1")
	require.Eventually(t, func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		_, ok := o.inFlight["vol-1"]
		return ok
	}, time.Second, 5*time.Millisecond)

	o.requestScan("vol-1", "/mnt/vol-1")
	close(s.block)

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fullCalls >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerHasherIsIdempotentWhileRunning(t *testing.T) {
	block := make(chan struct{})
	task := &blockingTask{block: block}
	o := newTestOrchestrator(&fakeScanner{}, &fakeVolumeRepo{}, &fakeMaintainer{})
	o.hasher = task

	o.triggerHasher()
	o.triggerHasher()

	close(block)
	require.Eventually(t, func() bool {
		task.mu.Lock()
		defer task.mu.Unlock()
		return task.calls == 1
	}, time.Second, 10*time.Millisecond)
}

type blockingTask struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
}

func (b *blockingTask) Run(ctx context.Context) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.block
	return nil
}

func TestHandleVolumeEventForwardsToDriveEvents(t *testing.T) {
	o := newTestOrchestrator(&fakeScanner{}, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, &fakeMaintainer{})

	ev := volumes.Event{Kind: volumes.Mounted, Volume: volumes.MountInfo{ID: "vol-1", MountPath: "/mnt/vol-1"}}
	o.handleVolumeEvent(ev)

	select {
	case forwarded := <-o.DriveEvents():
		assert.Equal(t, volumes.Mounted, forwarded.Kind)
		assert.Equal(t, "vol-1", forwarded.Volume.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded drive event")
	}
}

func TestHandleVolumeEventDropsWhenDriveEventsChannelFull(t *testing.T) {
	o := newTestOrchestrator(&fakeScanner{}, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1"}}, &fakeMaintainer{})
	o.driveEvents = make(chan volumes.Event)

	ev := volumes.Event{Kind: volumes.Unmounted, Volume: volumes.MountInfo{ID: "vol-1"}}

	done := make(chan struct{})
	go func() {
		o.handleVolumeEvent(ev)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleVolumeEvent blocked on a full, unbuffered drive events channel")
	}
}

func TestIsRecoverableRecognizesStoreErrorKind(t *testing.T) {
	assert.True(t, isRecoverable(&store.Error{Kind: store.ErrKindRecoverableCorruption, Op: "x", Err: errors.New("malformed database")}))
	assert.False(t, isRecoverable(&store.Error{Kind: store.ErrKindConstraint, Op: "x", Err: errors.New("plain error")}))
}
