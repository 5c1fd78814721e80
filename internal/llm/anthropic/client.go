package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dwizi/quantumx/internal/llm"
)

const defaultModel = "claude-3-5-haiku-latest"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	client anthropic.Client
	logger *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		cfg:    cfg,
		client: anthropic.NewClient(opts...),
		logger: logger,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

func (c *Client) Complete(ctx context.Context, systemPrompt string, history []llm.Message) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: missing ANTHROPIC_API_KEY", llm.ErrUnavailable)
	}

	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, message := range history {
		block := anthropic.NewTextBlock(message.Content)
		if message.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}

	params := anthropic.MessageNewParams{
		Model:     c.cfg.Model,
		MaxTokens: 4096,
		Messages:  messages,
	}
	if prompt := strings.TrimSpace(systemPrompt); prompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: prompt},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.logger.Error("anthropic message failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
