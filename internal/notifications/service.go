package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"unspool/internal/config"
)

const userAgent = "unspool/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyTitleCompleted(ctx context.Context, titleID string, artifacts int) error
	NotifyTitleFailed(ctx context.Context, titleID string, cause error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		notifyCompleted: cfg.Notifications.Completed,
		notifyErrors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	notifyCompleted bool
	notifyErrors    bool
}

func (n *ntfyService) NotifyTitleCompleted(ctx context.Context, titleID string, artifacts int) error {
	if !n.notifyCompleted {
		return nil
	}
	data := payload{
		title:   "unspool - Title Ready",
		message: fmt.Sprintf("Title %s published with %d artifacts", strings.TrimSpace(titleID), artifacts),
		tags:    []string{"unspool", "title", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTitleFailed(ctx context.Context, titleID string, cause error) error {
	if !n.notifyErrors {
		return nil
	}
	message := "unknown"
	if cause != nil {
		message = strings.TrimSpace(cause.Error())
	}
	data := payload{
		title:    "unspool - Title Failed",
		message:  fmt.Sprintf("Title %s failed: %s", strings.TrimSpace(titleID), message),
		tags:     []string{"unspool", "title", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "unspool - Test",
		message:  "Notification system test",
		tags:     []string{"unspool", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTitleCompleted(context.Context, string, int) error { return nil }
func (noopService) NotifyTitleFailed(context.Context, string, error) error  { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }

var (
	_ Service = (*ntfyService)(nil)
	_ Service = noopService{}
)
