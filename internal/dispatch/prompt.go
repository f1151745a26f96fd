package dispatch

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// PromptHandler renders a prompt. args is never nil.
type PromptHandler func(ctx context.Context, args map[string]string) ([]mcp.PromptMessage, error)

// Prompt is a registered prompt template.
type Prompt struct {
	Prompt  mcp.Prompt
	Handler PromptHandler
}

// Name is the prompt name.
func (p Prompt) Name() string { return p.Prompt.Name }
