// Package genai adapts the generative-language SDK to the small text/JSON
// surface the coaching bridge needs.
package genai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	googleai "google.golang.org/genai"

	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

// Part is one ordered piece of a request: text or inline media.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// Request describes a single generation call.
type Request struct {
	Operation string
	Parts     []Part
	JSON      bool
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Observer receives the duration and outcome label of every call.
type Observer func(operation string, duration time.Duration, outcome string)

// Config configures the client.
type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Observer Observer
	Logger   *zap.Logger
}

// Outcome labels reported to the observer.
const (
	OutcomeOK           = "ok"
	OutcomeUnconfigured = "unconfigured"
	OutcomeUnavailable  = "unavailable"
	OutcomeEmpty        = "empty"
)

// Client is a lazily initialised Generator backed by the Gemini API.
type Client struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	client *googleai.Client
}

// NewClient never dials; credentials are checked on the first call.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-3-flash-preview"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, logger: logger}
}

// Generate sends the request and returns the response text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	started := time.Now()

	client, err := c.ensureClient(ctx)
	if err != nil {
		c.observe(req.Operation, started, OutcomeUnconfigured)
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var config *googleai.GenerateContentConfig
	if req.JSON {
		config = &googleai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, toContents(req.Parts), config)
	if err != nil {
		c.observe(req.Operation, started, OutcomeUnavailable)
		c.logger.Warn("ai call failed", zap.String("operation", req.Operation), zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, appErrors.ErrServiceUnavailable.Message)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.observe(req.Operation, started, OutcomeEmpty)
		return "", appErrors.Clone(appErrors.ErrMalformedAIResponse, "")
	}

	c.observe(req.Operation, started, OutcomeOK)
	return text, nil
}

func (c *Client) ensureClient(ctx context.Context) (*googleai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "")
	}

	cc := &googleai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: googleai.BackendGeminiAPI,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = googleai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}

	client, err := googleai.NewClient(ctx, cc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, appErrors.ErrConfiguration.Message)
	}
	c.client = client
	return client, nil
}

func (c *Client) observe(operation string, started time.Time, outcome string) {
	if c.cfg.Observer == nil {
		return
	}
	c.cfg.Observer(operation, time.Since(started), outcome)
}

func toContents(parts []Part) []*googleai.Content {
	converted := make([]*googleai.Part, 0, len(parts))
	for _, part := range parts {
		switch {
		case len(part.Data) > 0:
			converted = append(converted, googleai.NewPartFromBytes(part.Data, part.MIMEType))
		case part.Text != "":
			converted = append(converted, googleai.NewPartFromText(part.Text))
		}
	}
	return []*googleai.Content{googleai.NewContentFromParts(converted, googleai.RoleUser)}
}
