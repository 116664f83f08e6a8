package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient scores leads through the Gemini API. A nil Client means no
// API key was configured.
type GeminiClient struct {
	Client      *genai.Client
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	g := &GeminiClient{
		Model:       model,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
	if g.Model == "" {
		g.Model = DefaultGeminiModel
	}
	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	g.Client = client
	return g, nil
}

func (g *GeminiClient) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	const op = "gemini.qualify"

	if g.Client == nil {
		return models.Qualification{}, apperr.New(apperr.KindAuth, "scoring API key is not configured").WithOp(op)
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := g.Client.Models.GenerateContent(ctx, g.Model, genai.Text(BuildPrompt(lead)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.Temperature),
		MaxOutputTokens:   g.MaxTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return models.Qualification{}, classifyGemini(err).WithOp(op)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return models.Qualification{}, apperr.New(apperr.KindMalformed, "empty completion").WithOp(op)
	}
	return ParseQualification(text)
}

func classifyGemini(err error) *apperr.Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperr.Wrap(apperr.KindAuth, "scoring service rejected credentials", err)
		case http.StatusTooManyRequests:
			e := apperr.RateLimited("scoring service rate limited the request", 0)
			e.Err = err
			return e
		}
		return apperr.Wrap(apperr.KindTransport, fmt.Sprintf("scoring service error %d", apiErr.Code), err)
	}
	return classifyTransport(err)
}
