package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"unspool/internal/config"
	"unspool/internal/logging"
	"unspool/internal/media/inspect"
	"unspool/internal/notifications"
	"unspool/internal/pipeline"
	"unspool/internal/queue"
	"unspool/internal/services"
	"unspool/internal/title"
)

// Processor runs the probe and extraction phases for one source container.
// *pipeline.Pipeline is the production implementation.
type Processor interface {
	Inspect(ctx context.Context, sourcePath string) (*inspect.Snapshot, error)
	Extract(ctx context.Context, sourcePath, titleID string, snap *inspect.Snapshot) (*pipeline.Result, error)
}

// Manager drains the title queue with a pool of workers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	processor    Processor
	notifier     notifications.Service
	logger       *slog.Logger
	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager with the production notifier.
func NewManager(cfg *config.Config, store *queue.Store, processor Processor, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, processor, notifications.NewService(cfg), logger)
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, processor Processor, notifier notifications.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		processor:    processor,
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
	}
}

// Start begins background queue processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	workers := m.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.runWorker(runCtx, i)
	}
	m.logger.Info("workflow started", logging.Int("workers", workers))
	return nil
}

// Stop terminates background processing and waits for in-flight titles.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Enqueue registers a source container for background processing and returns
// the pending queue item.
func (m *Manager) Enqueue(ctx context.Context, sourcePath string) (*queue.Item, error) {
	titleID := title.NewID(sourcePath, time.Now())
	item, err := m.store.NewTitle(ctx, titleID, sourcePath)
	if err != nil {
		return nil, err
	}
	m.logger.Info("title enqueued",
		logging.String(logging.FieldTitleID, titleID),
		logging.String("source", sourcePath),
	)
	return item, nil
}

// RunNow processes a source container synchronously, recording progress in
// the queue so the item history matches background runs. The item is inserted
// already claimed: it must never pass through pending, or a background worker
// could grab it and race this call on the staging directory.
func (m *Manager) RunNow(ctx context.Context, sourcePath string) (*pipeline.Result, error) {
	titleID := title.NewID(sourcePath, time.Now())
	item, err := m.store.NewClaimedTitle(ctx, titleID, sourcePath)
	if err != nil {
		return nil, err
	}
	m.logger.Info("title claimed for synchronous run",
		logging.String(logging.FieldTitleID, titleID),
		logging.String("source", sourcePath),
	)
	return m.runClaimed(ctx, item)
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextPending(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("failed to claim next queue item", logging.Error(err))
			m.sleep(ctx)
			continue
		}
		if item == nil {
			m.sleep(ctx)
			continue
		}

		if _, err := m.runClaimed(ctx, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

// runClaimed drives one claimed item through probing and extraction, keeping
// the queue row in step with the pipeline.
func (m *Manager) runClaimed(ctx context.Context, item *queue.Item) (*pipeline.Result, error) {
	ctx = services.WithTitleID(ctx, item.TitleID)
	logger := logging.WithContext(ctx, m.logger)

	snap, err := m.processor.Inspect(ctx, item.SourcePath)
	if err != nil {
		m.failItem(ctx, logger, item, err)
		return nil, err
	}

	item.Status = queue.StatusExtracting
	if err := m.store.Update(ctx, item); err != nil {
		m.failItem(ctx, logger, item, err)
		return nil, err
	}

	result, err := m.processor.Extract(ctx, item.SourcePath, item.TitleID, snap)
	if err != nil {
		m.failItem(ctx, logger, item, err)
		return nil, err
	}

	item.Status = queue.StatusCompleted
	item.ErrorMessage = ""
	item.ArtifactCount = len(result.Artifacts)
	if updateErr := m.store.Update(ctx, item); updateErr != nil {
		logger.Error("failed to mark item completed", logging.Error(updateErr))
	}
	if notifyErr := m.notifier.NotifyTitleCompleted(ctx, item.TitleID, len(result.Artifacts)); notifyErr != nil {
		logger.Warn("completion notification failed", logging.Error(notifyErr))
	}
	logger.Info("title completed",
		logging.Int("artifacts", len(result.Artifacts)),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (m *Manager) failItem(ctx context.Context, logger *slog.Logger, item *queue.Item, cause error) {
	item.SetFailed(cause.Error())
	if updateErr := m.store.Update(ctx, item); updateErr != nil {
		logger.Error("failed to mark item failed", logging.Error(updateErr))
	}
	if notifyErr := m.notifier.NotifyTitleFailed(ctx, item.TitleID, cause); notifyErr != nil {
		logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
	logger.Error("title failed", logging.Error(cause))
}

func (m *Manager) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
