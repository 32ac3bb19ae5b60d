package notifications_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"unspool/internal/config"
	"unspool/internal/notifications"
	"unspool/internal/testsupport"
)

func TestNewServiceReturnsNoopWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(testContext(t)); err != nil {
		t.Fatalf("noop service should never fail: %v", err)
	}
}

func TestNtfyServiceSendsHeaders(t *testing.T) {
	var gotTitle, gotTags, gotPriority string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = server.URL
	})
	svc := notifications.NewService(cfg)

	if err := svc.NotifyTitleFailed(testContext(t), "t-1", errors.New("probe failed")); err != nil {
		t.Fatalf("NotifyTitleFailed: %v", err)
	}
	if gotTitle != "unspool - Title Failed" {
		t.Fatalf("unexpected title header: %q", gotTitle)
	}
	if gotTags == "" || gotPriority != "high" {
		t.Fatalf("unexpected headers: tags=%q priority=%q", gotTags, gotPriority)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = server.URL
	})
	svc := notifications.NewService(cfg)

	if err := svc.NotifyTitleCompleted(testContext(t), "t-1", 4); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = server.URL
		cfg.Notifications.Completed = false
	})
	svc := notifications.NewService(cfg)

	if err := svc.NotifyTitleCompleted(testContext(t), "t-1", 4); err != nil {
		t.Fatalf("disabled event should be silent: %v", err)
	}
	if requests != 0 {
		t.Fatalf("disabled event must not reach ntfy, got %d requests", requests)
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
