package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"unspool/internal/manifest"
	"unspool/internal/media/inspect"
	"unspool/internal/pipeline"
	"unspool/internal/queue"
	"unspool/internal/services"
	"unspool/internal/testsupport"
	"unspool/internal/workflow"
)

type fakeProcessor struct {
	inspectErr  error
	extractErr  error
	inspectHook func(ctx context.Context)

	mu       sync.Mutex
	statuses []queue.Status
	store    *queue.Store
}

func (f *fakeProcessor) Inspect(ctx context.Context, _ string) (*inspect.Snapshot, error) {
	f.recordStatus(ctx)
	if f.inspectHook != nil {
		f.inspectHook(ctx)
	}
	if f.inspectErr != nil {
		return nil, f.inspectErr
	}
	return &inspect.Snapshot{}, nil
}

func (f *fakeProcessor) Extract(ctx context.Context, _ string, titleID string, _ *inspect.Snapshot) (*pipeline.Result, error) {
	f.recordStatus(ctx)
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return &pipeline.Result{
		TitleID:  titleID,
		Playlist: titleID + "/master.mp4",
		Artifacts: []manifest.Artifact{
			{Kind: manifest.KindVideo},
			{Kind: manifest.KindAudio, Language: "en"},
		},
	}, nil
}

// recordStatus snapshots the queue row status as each phase begins.
func (f *fakeProcessor) recordStatus(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store == nil {
		return
	}
	titleID, _ := services.TitleIDFromContext(ctx)
	item, err := f.store.GetByTitleID(ctx, titleID)
	if err != nil || item == nil {
		return
	}
	f.statuses = append(f.statuses, item.Status)
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (r *recordingNotifier) NotifyTitleCompleted(_ context.Context, titleID string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, titleID)
	return nil
}

func (r *recordingNotifier) NotifyTitleFailed(_ context.Context, titleID string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, titleID)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func newTestManager(t *testing.T, processor *fakeProcessor) (*workflow.Manager, *queue.Store, *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	processor.store = store
	notifier := &recordingNotifier{}
	return workflow.NewManagerWithNotifier(cfg, store, processor, notifier, nil), store, notifier
}

func TestRunNowCompletesItem(t *testing.T) {
	processor := &fakeProcessor{}
	manager, store, notifier := newTestManager(t, processor)

	result, err := manager.RunNow(testContext(t), "/in/movie.mkv")
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	item, err := store.GetByTitleID(testContext(t), result.TitleID)
	if err != nil {
		t.Fatalf("GetByTitleID: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if item.ArtifactCount != 2 {
		t.Fatalf("expected artifact count 2, got %d", item.ArtifactCount)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != result.TitleID {
		t.Fatalf("unexpected completion notifications: %v", notifier.completed)
	}
	// Probing happens before the extracting transition.
	if len(processor.statuses) != 2 || processor.statuses[0] != queue.StatusProbing || processor.statuses[1] != queue.StatusExtracting {
		t.Fatalf("unexpected status sequence: %v", processor.statuses)
	}
}

func TestRunNowItemNotClaimableAsPending(t *testing.T) {
	processor := &fakeProcessor{}
	manager, store, _ := newTestManager(t, processor)

	// A concurrent worker polling for work mid-run must come up empty;
	// the synchronous item is inserted already claimed.
	processor.inspectHook = func(ctx context.Context) {
		claimed, err := store.NextPending(ctx)
		if err != nil {
			t.Errorf("NextPending: %v", err)
			return
		}
		if claimed != nil {
			t.Errorf("synchronous item claimable as pending: %+v", claimed)
		}
	}

	result, err := manager.RunNow(testContext(t), "/in/movie.mkv")
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	item, err := store.GetByTitleID(testContext(t), result.TitleID)
	if err != nil {
		t.Fatalf("GetByTitleID: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
}

func TestRunNowProbeFailureMarksItemFailed(t *testing.T) {
	probeErr := services.Wrap(services.ErrProbe, "inspect", "ffprobe", "corrupt", errors.New("exit status 1"))
	processor := &fakeProcessor{inspectErr: probeErr}
	manager, store, notifier := newTestManager(t, processor)

	_, err := manager.RunNow(testContext(t), "/in/corrupt.mkv")
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}

	items, err := store.List(testContext(t), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 failed item, got %d", len(items))
	}
	if items[0].ErrorMessage == "" {
		t.Fatal("expected error message on failed item")
	}
	if len(notifier.failed) != 1 {
		t.Fatalf("unexpected failure notifications: %v", notifier.failed)
	}
}

func TestRunNowExtractionFailureMarksItemFailed(t *testing.T) {
	extractErr := services.Wrap(services.ErrExtraction, "extract", "ffmpeg", "stream 2", errors.New("exit status 1"))
	processor := &fakeProcessor{extractErr: extractErr}
	manager, store, _ := newTestManager(t, processor)

	_, err := manager.RunNow(testContext(t), "/in/movie.mkv")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}

	items, err := store.List(testContext(t), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 failed item, got %d", len(items))
	}
}

func TestManagerDrainsPendingItems(t *testing.T) {
	processor := &fakeProcessor{}
	manager, store, notifier := newTestManager(t, processor)

	item, err := manager.Enqueue(testContext(t), "/in/movie.mkv")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := manager.Start(testContext(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for {
		current, err := store.GetByID(testContext(t), item.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if current.Status == queue.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("item never completed, status %s", current.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	notifier.mu.Lock()
	completed := len(notifier.completed)
	notifier.mu.Unlock()
	if completed != 1 {
		t.Fatalf("expected 1 completion notification, got %d", completed)
	}
}

func TestStartTwiceFails(t *testing.T) {
	processor := &fakeProcessor{}
	manager, _, _ := newTestManager(t, processor)

	if err := manager.Start(testContext(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(testContext(t)); err == nil {
		t.Fatal("second Start must fail")
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
