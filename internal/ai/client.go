package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/internal/config"
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg    config.AIConfig
	http   *fasthttp.Client
	logger *zap.Logger
}

func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single-turn prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.cfg.APIKey == "" {
		return "", domain.NewError(domain.ErrCodeInternal, "AI API key is not configured")
	}

	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "encoding completion request", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "completion request failed", err)
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "decoding completion response", err)
	}
	if out.Error != nil {
		return "", domain.NewError(domain.ErrCodeInternal, "completion rejected: "+out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", domain.NewError(domain.ErrCodeInternal, "completion returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Summarize produces a short description of a saved link, capped at the
// configured rune length.
func (c *Client) Summarize(ctx context.Context, url, title string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the article at %s titled %q in at most two sentences. Reply with the summary only.",
		url, title,
	)
	summary, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return truncate(summary, c.cfg.MaxSummaryLength), nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
