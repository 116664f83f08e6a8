package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultTemperature   = 0.3
	DefaultMaxTokens     = 500
	DefaultTimeout       = 30 * time.Second
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o OpenAIClient) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	const op = "openai.qualify"

	if strings.TrimSpace(o.APIKey) == "" {
		return models.Qualification{}, apperr.New(apperr.KindAuth, "scoring API key is not configured").WithOp(op)
	}
	if o.Client == nil {
		o.Client = &http.Client{}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultOpenAIBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultOpenAIModel
	}

	payload := chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: BuildPrompt(lead)},
		},
		Temperature:    o.Temperature,
		MaxTokens:      o.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return models.Qualification{}, apperr.Wrap(apperr.KindInternal, "encode request", err).WithOp(op)
	}

	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	url := strings.TrimRight(o.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return models.Qualification{}, apperr.Wrap(apperr.KindInternal, "build request", err).WithOp(op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		return models.Qualification{}, classifyTransport(err).WithOp(op)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return models.Qualification{}, classifyStatus(resp, errBody).WithOp(op)
	}

	var res chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return models.Qualification{}, apperr.Wrap(apperr.KindMalformed, "decode completion", err).WithOp(op)
	}
	if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Message.Content) == "" {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "empty completion").WithOp(op)
	}
	return ParseQualification(res.Choices[0].Message.Content)
}

func classifyTransport(err error) *apperr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTransport, "scoring request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Wrap(apperr.KindTransport, "scoring request timed out", err)
	}
	return apperr.Wrap(apperr.KindTransport, "scoring request failed", err)
}

func classifyStatus(resp *http.Response, errBody map[string]any) *apperr.Error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.New(apperr.KindAuth, fmt.Sprintf("scoring service rejected credentials: %s", resp.Status)).WithDetails(errBody)
	case resp.StatusCode == http.StatusTooManyRequests:
		d := parseRetryAfter(resp.Header.Get("Retry-After"))
		if d == 0 {
			d = extractRetryAfter(errBody)
		}
		return apperr.RateLimited("scoring service rate limited the request", d).WithDetails(errBody)
	default:
		return apperr.New(apperr.KindTransport, fmt.Sprintf("scoring service http error: %s", resp.Status)).WithDetails(errBody)
	}
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// extractRetryAfter reads a Google-style RetryInfo detail from an error body.
func extractRetryAfter(errBody map[string]any) time.Duration {
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["@type"].(string); ok && strings.Contains(t, "RetryInfo") {
			if s, ok := m["retryDelay"].(string); ok {
				if dur, err := time.ParseDuration(s); err == nil {
					return dur
				}
			}
		}
	}
	return 0
}
