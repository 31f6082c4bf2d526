// Package assistant runs the AI writing features: conversational help while
// editing a record, and job-tailored drafts built from the whole career record.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/prompts"
)

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 90 * time.Second

// ServiceConfig configures a Service
type ServiceConfig struct {
	Timeout time.Duration
	Limits  prompts.AssistantLimits
	Logger  *slog.Logger
}

// Service answers chat turns about the record being edited.
// It holds no conversation state; the caller owns the history.
type Service struct {
	client  llm.Client
	timeout time.Duration
	limits  prompts.AssistantLimits
	logger  *slog.Logger
}

// NewService creates a chat service around a completion client
func NewService(client llm.Client, cfg ServiceConfig) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Limits == (prompts.AssistantLimits{}) {
		cfg.Limits = prompts.DefaultAssistantLimits()
	}
	return &Service{
		client:  client,
		timeout: cfg.Timeout,
		limits:  cfg.Limits,
		logger:  logging.OrDiscard(cfg.Logger),
	}
}

// SendMessage sends the conversation so far, with the assembled context as the
// system prompt, and returns the assistant reply. conversation is not modified;
// appending the reply is up to the caller.
func (s *Service) SendMessage(ctx context.Context, conversation []llm.Message, aiCtx *aicontext.Context, opts llm.Options) (*llm.Response, error) {
	req, err := s.request(conversation, aiCtx, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.logFailure(aiCtx, err)
		return nil, err
	}
	s.logSuccess(aiCtx, resp, start)
	return resp, nil
}

// StreamMessage is SendMessage with incremental delivery: onDelta receives each
// text fragment, and the returned response carries the full reply.
func (s *Service) StreamMessage(ctx context.Context, conversation []llm.Message, aiCtx *aicontext.Context, opts llm.Options, onDelta func(string) error) (*llm.Response, error) {
	req, err := s.request(conversation, aiCtx, opts)
	if err != nil {
		return nil, err
	}
	req.Options.Stream = true

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Stream(ctx, req, onDelta)
	if err != nil {
		s.logFailure(aiCtx, err)
		return nil, err
	}
	s.logSuccess(aiCtx, resp, start)
	return resp, nil
}

func (s *Service) request(conversation []llm.Message, aiCtx *aicontext.Context, opts llm.Options) (*llm.Request, error) {
	messages := make([]llm.Message, len(conversation))
	copy(messages, conversation)

	req := &llm.Request{
		System:   prompts.BuildAssistantPrompt(aiCtx, s.limits),
		Messages: messages,
		Options:  opts,
		Tier:     llm.TierStandard,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.Temperature != nil && (*opts.Temperature < 0 || *opts.Temperature > 2) {
		return nil, fmt.Errorf("%w: temperature must be between 0 and 2", llm.ErrInvalidRequest)
	}
	return req, nil
}

func (s *Service) logFailure(aiCtx *aicontext.Context, err error) {
	s.logger.Error("assistant completion failed",
		"collection", collectionOf(aiCtx),
		"kind", llm.KindOf(err),
		"error", err)
}

func (s *Service) logSuccess(aiCtx *aicontext.Context, resp *llm.Response, start time.Time) {
	attrs := []any{
		"collection", collectionOf(aiCtx),
		"duration", time.Since(start),
	}
	if resp.Usage != nil {
		attrs = append(attrs, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	s.logger.Info("assistant completion", attrs...)
}

func collectionOf(c *aicontext.Context) string {
	if c == nil {
		return ""
	}
	return c.EditingContext.Collection
}
