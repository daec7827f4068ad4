package simplify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// ErrMalformedResult is returned when the remote endpoint responds with a
// shape that is neither a string nor a list of strings.
var ErrMalformedResult = errors.New("simplify: malformed remote result")

// Kind discriminates the closed set of remote payload shapes.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
)

// Input is the request payload: either one clause or an ordered batch.
type Input struct {
	kind  Kind
	text  string
	texts []string
}

// Scalar wraps a single clause text.
func Scalar(text string) Input {
	return Input{kind: KindScalar, text: text}
}

// Sequence wraps an ordered batch of clause texts.
func Sequence(texts []string) Input {
	return Input{kind: KindSequence, texts: texts}
}

// Result is the decoded remote response. Exactly one of Text or Texts is
// meaningful, selected by Kind; anything else was rejected at decode time.
type Result struct {
	Kind  Kind
	Text  string
	Texts []string
}

// Caller is the minimal remote surface the dispatcher and the batch
// pipeline depend on.
type Caller interface {
	Predict(ctx context.Context, in Input) (Result, error)
}

// Client talks to the remote simplification endpoint. The underlying HTTP
// handle is built once on first use and shared across concurrent callers;
// retry and concurrency control live in Dispatcher and Pipeline, not here.
type Client struct {
	cfg model.SimplifierConfig
	log logger.Logger

	once       sync.Once
	httpClient *http.Client
}

// NewClient creates a client for the configured endpoint. No connection is
// made until the first Predict call.
func NewClient(cfg model.SimplifierConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.Default()
	}
	return &Client{cfg: cfg, log: log}
}

// handle lazily initializes the shared HTTP client.
func (c *Client) handle() *http.Client {
	c.once.Do(func() {
		timeout := c.cfg.Timeout
		if timeout == 0 {
			timeout = 120 * time.Second
		}
		c.log.Info("connecting to simplifier endpoint", "base_url", c.cfg.BaseURL)
		c.httpClient = &http.Client{Timeout: timeout}
	})
	return c.httpClient
}

// predictRequest and predictResponse follow the gradio-style prediction
// API: a single positional data slot holding the payload.
type predictRequest struct {
	Data []any `json:"data"`
}

type predictResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Predict performs one blocking remote call and decodes the result into
// the closed {scalar, sequence} variant.
func (c *Client) Predict(ctx context.Context, in Input) (Result, error) {
	var payload any
	switch in.kind {
	case KindSequence:
		payload = in.texts
	default:
		payload = in.text
	}

	body, err := json.Marshal(predictRequest{Data: []any{payload}})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/run/simplify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.handle().Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var predResp predictResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return Result{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(predResp.Data) == 0 {
		return Result{}, ErrMalformedResult
	}

	return decodeResult(predResp.Data[0])
}

// decodeResult maps the raw payload onto the closed variant, rejecting
// any other shape instead of guessing further.
func decodeResult(raw json.RawMessage) (Result, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return Result{Kind: KindScalar, Text: text}, nil
	}

	var texts []string
	if err := json.Unmarshal(raw, &texts); err == nil {
		return Result{Kind: KindSequence, Texts: texts}, nil
	}

	return Result{}, ErrMalformedResult
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
