package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Complete sends the conversation as a chat session and returns the reply
func (c *GeminiClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	cs, last, err := c.startChat(req)
	if err != nil {
		return nil, err
	}

	resp, err := cs.SendMessage(ctx, last)
	if err != nil {
		return nil, classifyGemini(err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, classify(ProviderGemini, err, 0, false)
	}

	return &Response{
		Message: Message{Role: RoleAssistant, Content: text},
		Usage:   geminiUsage(resp.UsageMetadata),
	}, nil
}

// Stream sends the conversation and forwards text chunks as they arrive
func (c *GeminiClient) Stream(ctx context.Context, req *Request, onDelta func(string) error) (*Response, error) {
	cs, last, err := c.startChat(req)
	if err != nil {
		return nil, err
	}

	iter := cs.SendMessageStream(ctx, last)

	var (
		sb    strings.Builder
		usage *Usage
	)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyGemini(err)
		}

		if chunk := chunkText(resp); chunk != "" {
			sb.WriteString(chunk)
			if err := onDelta(chunk); err != nil {
				return nil, err
			}
		}
		if resp.UsageMetadata != nil {
			usage = geminiUsage(resp.UsageMetadata)
		}
	}

	if sb.Len() == 0 {
		return nil, classify(ProviderGemini, errors.New("no text parts in response"), 0, false)
	}

	return &Response{
		Message: Message{Role: RoleAssistant, Content: sb.String()},
		Usage:   usage,
	}, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// startChat configures a model for req and loads every turn but the last as history
func (c *GeminiClient) startChat(req *Request) (*genai.ChatSession, genai.Part, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	modelName := c.config.GetModel(req.tier())
	if modelName == "" {
		return nil, nil, errors.Errorf("no model configured for tier %s", req.tier())
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Options.EffectiveTemperature()))
	model.SetMaxOutputTokens(int32(req.Options.EffectiveMaxTokens()))
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	history, last := geminiHistory(req.Turns())
	cs := model.StartChat()
	cs.History = history
	return cs, genai.Text(last), nil
}

// geminiHistory converts validated turns to chat history plus the final user
// message. Turns are normalized the same way as for Anthropic.
func geminiHistory(turns []Message) ([]*genai.Content, string) {
	turns = alternateTurns(turns)
	if len(turns) == 0 {
		return nil, ""
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history, turns[len(turns)-1].Content
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	text := chunkText(resp)
	if text == "" {
		return "", errors.New("no text parts in response")
	}
	return text, nil
}

func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func geminiUsage(md *genai.UsageMetadata) *Usage {
	if md == nil {
		return nil
	}
	usage := &Usage{
		InputTokens:  int(md.PromptTokenCount),
		OutputTokens: int(md.CandidatesTokenCount),
	}
	if md.CachedContentTokenCount > 0 {
		usage.CachedTokens = intPtr(int(md.CachedContentTokenCount))
	}
	return usage
}

// classifyGemini maps REST (googleapi) and gRPC status errors to an Error
func classifyGemini(err error) *Error {
	wrapped := errors.Wrap(err, "gemini completion failed")

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderGemini, wrapped, apiErr.Code, apiErr.Code == 429)
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return classify(ProviderGemini, wrapped, 429, true)
	}
	return classify(ProviderGemini, wrapped, 0, false)
}
