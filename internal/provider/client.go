// package provider is the HTTP client for the generative-text API. It
// exposes a single Generate call and maps every failure mode onto a
// structured Error with an ErrorClass the failover layer can act on.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/resolvedesk/resolvedesk/internal/credentials"
)

const defaultModel = "gemini-flash-latest"

type ClientConfig struct {
	// BaseURL of the generative-language endpoint, without trailing slash.
	BaseURL string
	// Model name appended to the generateContent path. Defaults to
	// defaultModel.
	Model string
	// Timeout bounds each Generate call. Defaults to 30s.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	model   string
	client  *http.Client
	timeout time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider base url required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   model,
		client:  client,
		timeout: timeout,
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a single-turn prompt using the given credential and
// returns the first candidate's text. All failures are *Error.
func (c *Client) Generate(ctx context.Context, cred credentials.Credential, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", newError(ClassFatal, 0, "marshal request: %v", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, cred.Secret())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", newError(ClassFatal, 0, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and transport errors may clear on another key or a
		// later attempt.
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return "", newError(ClassUnavailable, 0, "request timed out after %s", c.timeout)
		}
		return "", newError(ClassUnavailable, 0, "transport: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", newError(ClassFatal, resp.StatusCode, "decode response: %v", err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", newError(ClassFatal, resp.StatusCode, "content blocked: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", newError(ClassFatal, resp.StatusCode, "empty candidate list")
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

func classifyStatus(resp *http.Response) *Error {
	var body apiErrorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error.Message
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return newError(ClassQuota, resp.StatusCode, "%s", msg)
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return newError(ClassInvalidCredential, resp.StatusCode, "%s", msg)
	case resp.StatusCode >= 500:
		return newError(ClassUnavailable, resp.StatusCode, "%s", msg)
	default:
		return newError(ClassFatal, resp.StatusCode, "%s", msg)
	}
}
