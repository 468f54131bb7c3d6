// Package langfuse is a minimal REST client for the Langfuse ingestion API,
// used to record model and tool call traces. Tracing is best-effort: a
// client that cannot authenticate stays usable and drops events.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	Host      string        `split_words:"true" default:"https://cloud.langfuse.com"`
	PublicKey string        `split_words:"true"`
	SecretKey string        `split_words:"true"`
	Timeout   time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether credentials are configured at all.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.PublicKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// Tracer is what the agent layer records against. NopTracer satisfies it
// for deployments without observability credentials.
type Tracer interface {
	Trace(ctx context.Context, event Event) error
}

// Event is one observed model or tool invocation.
type Event struct {
	SessionID string         `json:"sessionId,omitempty"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"` // "model" or "tool"
	Input     any            `json:"input,omitempty"`
	Output    any            `json:"output,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type NopTracer struct{}

func (NopTracer) Trace(context.Context, Event) error { return nil }

type Client struct {
	host       string
	publicKey  string
	secretKey  string
	httpClient *http.Client
}

var _ Tracer = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("langfuse host is required")
	}
	if _, err := url.ParseRequestURI(host); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, errors.New("langfuse keys are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		host:       strings.TrimRight(host, "/"),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		secretKey:  strings.TrimSpace(cfg.SecretKey),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CheckAuth verifies the configured keys against the API. Callers treat a
// failure as non-fatal and log it.
func (c *Client) CheckAuth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/public/projects", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("langfuse auth check failed: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("langfuse auth check: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type ingestionBatch struct {
	Batch []ingestionItem `json:"batch"`
}

type ingestionItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

// Trace sends one event to the ingestion endpoint.
func (c *Client) Trace(ctx context.Context, event Event) error {
	item := ingestionItem{
		ID:        uuid.NewString(),
		Type:      "trace-create",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      event,
	}
	payload, err := json.Marshal(ingestionBatch{Batch: []ingestionItem{item}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("langfuse ingestion: status %d", resp.StatusCode)
	}
	return nil
}
