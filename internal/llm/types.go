package llm

import (
	"fmt"
	"strings"
)

// Role is the author of a conversation turn
type Role string

// Conversation roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one conversation turn
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// Token limits applied to every request
const (
	MaxTokensCeiling   = 4096
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
)

// Options is the generation options bag sent with a chat request
type Options struct {
	Stream      bool     `json:"stream,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty" validate:"gte=0"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// EffectiveMaxTokens returns MaxTokens clamped to the ceiling, or the default when unset
func (o Options) EffectiveMaxTokens() int {
	switch {
	case o.MaxTokens <= 0:
		return DefaultMaxTokens
	case o.MaxTokens > MaxTokensCeiling:
		return MaxTokensCeiling
	default:
		return o.MaxTokens
	}
}

// EffectiveTemperature returns Temperature or the default when unset
func (o Options) EffectiveTemperature() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}

// Float returns a pointer to f, for Options.Temperature
func Float(f float64) *float64 {
	return &f
}

// Request is a single completion call
type Request struct {
	System   string    // sent as the provider's dedicated system instruction
	Messages []Message // system-role turns are dropped before submission
	Options  Options
	Tier     ModelTier // empty means TierStandard
}

// Usage reports token counters when the provider returns them
type Usage struct {
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
	CachedTokens *int `json:"cached_tokens,omitempty"`
}

// Response is the first text result of a completion call
type Response struct {
	Message Message `json:"message"`
	Usage   *Usage  `json:"usage,omitempty"`
}

// Turns returns the request's conversation without system-role messages.
// The result never aliases r.Messages.
func (r *Request) Turns() []Message {
	turns := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			continue
		}
		turns = append(turns, m)
	}
	return turns
}

// alternateTurns shapes turns for providers that need a strict user/assistant
// alternation starting with the user: leading assistant turns are dropped and
// consecutive turns from the same role are merged, separated by a blank line.
func alternateTurns(turns []Message) []Message {
	for len(turns) > 0 && turns[0].Role == RoleAssistant {
		turns = turns[1:]
	}

	out := make([]Message, 0, len(turns))
	for _, m := range turns {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}

// Validate checks that the request can be submitted: at least one
// non-system turn, ending with a user turn.
func (r *Request) Validate() error {
	turns := r.Turns()
	if len(turns) == 0 {
		return fmt.Errorf("%w: no user or assistant messages", ErrInvalidRequest)
	}
	last := turns[len(turns)-1]
	if last.Role != RoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidRequest)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: last message is empty", ErrInvalidRequest)
	}
	for _, m := range turns {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, m.Role)
		}
	}
	return nil
}

func (r *Request) tier() ModelTier {
	if r.Tier == "" {
		return TierStandard
	}
	return r.Tier
}

func intPtr(n int) *int {
	return &n
}
