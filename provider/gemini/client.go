// Package gemini is a minimal client for the Generative Language API
// generateContent endpoint.
package gemini

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

	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/provider"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
)

// Client calls models/{model}:generateContent with an API key.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client. An empty baseURL or model selects the defaults.
func New(apiKey, baseURL, model string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factory adapts New to provider.Factory.
func Factory(cfg *provider.Config, apiKey string) (provider.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	return New(apiKey, cfg.BaseURL, cfg.Model, WithHTTPClient(&http.Client{Timeout: cfg.Timeout})), nil
}

func (c *Client) Name() string {
	return provider.NameGemini
}

// Model returns the model id requests are sent to.
func (c *Client) Model() string {
	return c.model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// buildRequest maps the conversation onto Gemini's shape: system messages
// become systemInstruction, assistant turns use the "model" role.
func buildRequest(messages []protocol.Message) generateRequest {
	var req generateRequest
	var system []part

	for _, msg := range messages {
		switch msg.Role {
		case protocol.RoleSystem:
			if msg.Content != "" {
				system = append(system, part{Text: msg.Content})
			}
		case protocol.RoleAssistant:
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	if len(system) > 0 {
		req.SystemInstruction = &content{Parts: system}
	}
	return req
}

// Complete sends messages and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	data, err := json.Marshal(buildRequest(messages))
	if err != nil {
		return "", &provider.Error{Provider: c.Name(), Err: err}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", &provider.Error{Provider: c.Name(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &provider.Error{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &provider.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &provider.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			perr.Message = er.Error.Message
			perr.Status = er.Error.Status
		}
		return "", perr
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &provider.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}

	if len(out.Candidates) == 0 {
		msg := "no candidates returned"
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			msg = "prompt blocked: " + out.PromptFeedback.BlockReason
		}
		return "", &provider.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: msg, Err: provider.ErrEmptyResponse}
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", &provider.Error{
			Provider:   c.Name(),
			StatusCode: resp.StatusCode,
			Message:    "empty candidate, finish reason " + out.Candidates[0].FinishReason,
			Err:        provider.ErrEmptyResponse,
		}
	}
	return text.String(), nil
}
