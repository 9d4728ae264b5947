package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lookout/internal/config"
	"lookout/internal/store"
)

const userAgent = "Lookout-Go/0.1.0"

// Service is the delivery surface for generated actions.
type Service interface {
	DeliverPopup(ctx context.Context, action store.Action) error
	DeliverNotification(ctx context.Context, action store.Action) error
	TestNotification(ctx context.Context) error
}

// NewService builds a delivery service backed by ntfy when configured.
// Without a topic, a noop implementation is returned and actions are only
// recorded.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// DeliverPopup sends an intrusive suggestion. Popups ride the high ntfy
// priority so the client renders them prominently.
func (n *ntfyService) DeliverPopup(ctx context.Context, action store.Action) error {
	data := payload{
		title:    strings.TrimSpace(action.Title),
		message:  strings.TrimSpace(action.Message),
		tags:     []string{"lookout", action.Source, "popup"},
		priority: ntfyPriority(action.Priority, true),
	}
	return n.send(ctx, data)
}

// DeliverNotification sends a passive suggestion.
func (n *ntfyService) DeliverNotification(ctx context.Context, action store.Action) error {
	data := payload{
		title:    strings.TrimSpace(action.Title),
		message:  strings.TrimSpace(action.Message),
		tags:     []string{"lookout", action.Source},
		priority: ntfyPriority(action.Priority, false),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lookout - Test",
		message:  "Notification system test",
		tags:     []string{"lookout", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// ntfyPriority maps an action priority in [0, 10] onto ntfy's scale.
func ntfyPriority(priority int, popup bool) string {
	switch {
	case priority >= 8:
		return "urgent"
	case popup || priority >= 6:
		return "high"
	case priority >= 3:
		return "default"
	default:
		return "low"
	}
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

func (noopService) DeliverPopup(context.Context, store.Action) error        { return nil }
func (noopService) DeliverNotification(context.Context, store.Action) error { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
