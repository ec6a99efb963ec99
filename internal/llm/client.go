// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrGenerationFailed wraps every failure to obtain a usable reply.
var ErrGenerationFailed = errors.New("text generation failed")

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphinx_llm_requests_total",
			Help: "Chat completion requests, by model and result.",
		},
		[]string{"model", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sphinx_llm_request_duration_seconds",
			Help:    "Chat completion latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphinx_llm_tokens_total",
			Help: "Tokens reported by the completion endpoint.",
		},
		[]string{"model", "kind"},
	)
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration // 0 => no per-call timeout
}

type Client struct {
	client      *openaigo.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	oc := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{}

	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client:      openaigo.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log.Named("llm"),
	}
}

// Generate sends systemPrompt and the player's input as a two-message chat
// and returns the first choice. An empty choice counts as a failure.
func (c *Client) Generate(ctx context.Context, identity, input, systemPrompt string) (string, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		requestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("%w: empty system prompt", ErrGenerationFailed)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openaigo.ChatMessageRoleUser, Content: input},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		User:        identity,
	})
	took := time.Since(start)
	requestDuration.WithLabelValues(c.model).Observe(took.Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(c.model, "error").Inc()
		c.log.Warn("chat completion failed",
			zap.String("identity", identity), zap.Duration("took", took), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		requestsTotal.WithLabelValues(c.model, "error_empty_response").Inc()
		c.log.Warn("chat completion returned no content",
			zap.String("identity", identity), zap.Duration("took", took))
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	requestsTotal.WithLabelValues(c.model, "success").Inc()
	tokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	tokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	c.log.Debug("chat completion ok",
		zap.String("identity", identity),
		zap.Duration("took", took),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}
