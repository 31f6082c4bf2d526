package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

// AnthropicClient implements Client for Anthropic Claude
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Claude client. Extra options are applied
// after the API key, e.g. anthropicopt.WithBaseURL in tests.
// SDK retries are disabled: a failed call surfaces to the user, who may resubmit.
func NewAnthropicClient(config *Config, apiKey string, opts ...anthropicopt.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	all := append([]anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithMaxRetries(0),
	}, opts...)

	return &AnthropicClient{
		client: anthropic.NewClient(all...),
		config: config,
	}, nil
}

// Complete sends the conversation to the Messages API and returns the reply
func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	params, err := c.params(req)
	if err != nil {
		return nil, err
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropic(err)
	}

	text := anthropicText(msg)
	if text == "" {
		return nil, classify(ProviderAnthropic, errors.New("no text content in response"), 0, false)
	}

	return &Response{
		Message: Message{Role: RoleAssistant, Content: text},
		Usage:   anthropicUsage(msg.Usage),
	}, nil
}

// Stream sends the conversation and forwards text deltas as they arrive
func (c *AnthropicClient) Stream(ctx context.Context, req *Request, onDelta func(string) error) (*Response, error) {
	params, err := c.params(req)
	if err != nil {
		return nil, err
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		acc anthropic.Message
		sb  strings.Builder
	)
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			return nil, classify(ProviderAnthropic, errors.Wrap(err, "failed to accumulate stream"), 0, false)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				sb.WriteString(delta.Text)
				if err := onDelta(delta.Text); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, classifyAnthropic(err)
	}

	if sb.Len() == 0 {
		return nil, classify(ProviderAnthropic, errors.New("no text content in response"), 0, false)
	}

	return &Response{
		Message: Message{Role: RoleAssistant, Content: sb.String()},
		Usage:   anthropicUsage(acc.Usage),
	}, nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the SDK holds no long-lived resources
func (c *AnthropicClient) Close() error {
	return nil
}

func (c *AnthropicClient) params(req *Request) (anthropic.MessageNewParams, error) {
	if err := req.Validate(); err != nil {
		return anthropic.MessageNewParams{}, err
	}

	modelName := c.config.GetModel(req.tier())
	if modelName == "" {
		return anthropic.MessageNewParams{}, errors.Errorf("no model configured for tier %s", req.tier())
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   int64(req.Options.EffectiveMaxTokens()),
		Messages:    anthropicMessages(req.Turns()),
		Temperature: anthropic.Float(req.Options.EffectiveTemperature()),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}

// anthropicMessages converts turns into alternating messages that open with the user
func anthropicMessages(turns []Message) []anthropic.MessageParam {
	turns = alternateTurns(turns)

	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	return msgs
}

func anthropicText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

func anthropicUsage(u anthropic.Usage) *Usage {
	usage := &Usage{
		InputTokens:  int(u.InputTokens),
		OutputTokens: int(u.OutputTokens),
	}
	if u.CacheReadInputTokens > 0 {
		usage.CachedTokens = intPtr(int(u.CacheReadInputTokens))
	}
	return usage
}

func classifyAnthropic(err error) *Error {
	wrapped := errors.Wrap(err, "anthropic completion failed")

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderAnthropic, wrapped, apiErr.StatusCode, apiErr.StatusCode == 429)
	}
	return classify(ProviderAnthropic, wrapped, 0, false)
}
