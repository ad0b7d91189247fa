// Package webhook provides HTTP notification support for ledger
// integrity events. Payloads are HMAC-SHA256 signed when a hook secret
// is configured, so receivers can authenticate the sender.
package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chainlog-project/chainlog/pkg/config"
	"github.com/chainlog-project/chainlog/pkg/logging"
)

// EventType represents the type of ledger event that can trigger webhooks.
type EventType string

const (
	EventAppended       EventType = "event.appended"
	EventSnapshotCreate EventType = "snapshot.created"
	EventVerifyComplete EventType = "verify.complete"
	EventVerifyFailed   EventType = "verify.failed"
)

// Event is the JSON payload sent to webhook endpoints.
type Event struct {
	Event     EventType      `json:"event"`
	Timestamp string         `json:"timestamp"`
	LedgerID  string         `json:"ledger_id,omitempty"`
	Journal   string         `json:"journal,omitempty"`
	Day       string         `json:"day,omitempty"`
	ChainHash string         `json:"chain_hash,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier sends events to the hooks configured in config.yaml.
type Notifier struct {
	cfg    config.WebhookConfig
	client *http.Client
}

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
)

// NewNotifier creates a notifier for the given webhook configuration.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Send delivers the event to every configured hook subscribed to its
// type. Delivery failures are logged, never fatal: a webhook outage
// must not block ledger operations.
func (n *Notifier) Send(event Event) {
	if !n.cfg.Enabled {
		return
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	for _, hook := range n.cfg.Hooks {
		if !matchesEvent(hook, event.Event) {
			continue
		}
		if err := n.deliver(hook, event); err != nil {
			logging.ErrorErr("webhook delivery failed", err, map[string]any{
				"url":   hook.URL,
				"event": string(event.Event),
			})
		}
	}
}

func matchesEvent(hook config.HookConfig, et EventType) bool {
	if len(hook.Events) == 0 {
		return true
	}
	for _, e := range hook.Events {
		if e == string(et) || e == "*" {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(hook config.HookConfig, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		if lastErr = n.post(hook, payload); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (n *Notifier) post(hook config.HookConfig, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, hook.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chainlog-webhook/1")
	if hook.Secret != "" {
		req.Header.Set("X-Chainlog-Signature", Sign(hook.Secret, payload))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
