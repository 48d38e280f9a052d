// Package ollama implements pkg/llm's Generator against Ollama's generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parchmentco/lore/pkg/llm"
)

const (
	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds a single generate call. Generation on large
	// models is slow, so the default is on the order of minutes.
	DefaultTimeout = 10 * time.Minute

	// probePrompt is the minimal prompt used by Probe to confirm the
	// backend is up and the model is loaded.
	probePrompt = "Hello"
)

// Client wraps Ollama's /api/generate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	options    *generateOptions
}

// Config holds configuration for the Ollama gateway client.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Timeout bounds each generate call. Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// Temperature, NumCtx, and Stop map onto Ollama's sampling options.
	// Nil/empty values are omitted from the request.
	Temperature *float64
	NumCtx      *int
	Stop        []string
}

// NewClient creates a gateway client for an Ollama-compatible server.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var opts *generateOptions
	if cfg.Temperature != nil || cfg.NumCtx != nil || len(cfg.Stop) > 0 {
		opts = &generateOptions{
			Temperature: cfg.Temperature,
			NumCtx:      cfg.NumCtx,
			Stop:        cfg.Stop,
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		options: opts,
	}
}

// Generate implements llm.Generator. One blocking attempt, no retries.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if prompt == "" {
		return "", &llm.Error{Kind: llm.KindMalformedResponse, Detail: "prompt must not be empty"}
	}
	if model == "" {
		return "", &llm.Error{Kind: llm.KindUnsupported, Detail: "model must not be empty"}
	}

	body, err := json.Marshal(generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, model)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &llm.Error{
			Kind:   llm.KindMalformedResponse,
			Detail: "decoding generate response",
			Err:    err,
		}
	}

	if parsed.Response == nil {
		return "", &llm.Error{
			Kind:   llm.KindMalformedResponse,
			Detail: "generate response is missing the 'response' field",
		}
	}

	return strings.TrimSpace(*parsed.Response), nil
}

// Probe implements llm.Generator with a minimal generate call, mirroring the
// "can we even talk to the backend" check done before a pipeline run.
func (c *Client) Probe(ctx context.Context, model string) error {
	_, err := c.Generate(ctx, model, probePrompt)
	return err
}

// transportError classifies request-level failures: deadline overruns become
// KindTimedOut, everything else (refused connections, DNS) KindUnreachable.
func transportError(baseURL string, err error) *llm.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.Error{Kind: llm.KindTimedOut, Detail: "generate call exceeded its deadline", Err: err}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &llm.Error{Kind: llm.KindTimedOut, Detail: "generate call exceeded its deadline", Err: err}
	}

	return &llm.Error{
		Kind:   llm.KindUnreachable,
		Detail: fmt.Sprintf("could not reach inference server at %s", baseURL),
		Err:    err,
	}
}

// statusError classifies non-200 replies. Ollama reports a missing model as
// 404 with an error body; backend-side failures are treated as unreachable
// since the caller can do nothing but point at a healthy server.
func statusError(resp *http.Response, model string) *llm.Error {
	detail := fmt.Sprintf("inference server returned status %d", resp.StatusCode)
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		var parsed errorResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
			detail = parsed.Error
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &llm.Error{
			Kind:   llm.KindUnsupported,
			Detail: fmt.Sprintf("model %q is not available: %s", model, detail),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &llm.Error{Kind: llm.KindUnreachable, Detail: detail}
	default:
		return &llm.Error{Kind: llm.KindMalformedResponse, Detail: detail}
	}
}
