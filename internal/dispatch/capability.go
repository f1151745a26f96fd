package dispatch

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
)

// Group orders capabilities in listings. Lower groups are listed first.
type Group int

const (
	GroupUnset Group = iota
	GroupCluster
	GroupDomain
	GroupUtility
)

func (g Group) String() string {
	switch g {
	case GroupCluster:
		return "kubernetes"
	case GroupDomain:
		return "hlf"
	case GroupUtility:
		return "utility"
	default:
		return "unset"
	}
}

// CapabilityHandler runs a tool. The returned value is rendered by the
// engine: a string becomes text, a *mcp.CallToolResult is passed through and
// anything else is encoded as indented JSON. A non-nil error becomes a
// failure result.
type CapabilityHandler func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// Capability is a registered tool.
type Capability struct {
	Tool    mcp.Tool
	Group   Group
	Handler CapabilityHandler
}

// Name is the tool name.
func (c Capability) Name() string { return c.Tool.Name }

// CapabilityMiddleware decorates a capability at registration time.
type CapabilityMiddleware func(Capability) Capability

// Contributor supplies one group of capabilities.
type Contributor interface {
	Group() Group
	Capabilities() []Capability
}

// PromptSource supplies prompts.
type PromptSource interface {
	Prompts() []Prompt
}

// Registries holds the two registries the engine serves from.
type Registries struct {
	Capabilities *Registry[Capability]
	Prompts      *Registry[Prompt]

	middleware []CapabilityMiddleware
	logger     *slog.Logger
}

// NewRegistries returns empty registries. Middleware is applied, in order, to
// every capability registered afterwards.
func NewRegistries(logger *slog.Logger, middleware ...CapabilityMiddleware) *Registries {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registries{
		Capabilities: NewRegistry[Capability](),
		Prompts:      NewRegistry[Prompt](),
		middleware:   middleware,
		logger:       logger,
	}
}

// RegisterCapability adds c. A later registration of the same name wins.
func (r *Registries) RegisterCapability(c Capability) {
	for _, mw := range r.middleware {
		c = mw(c)
	}
	if r.Capabilities.Register(c.Name(), c) {
		r.logger.Warn("Tool registered twice, keeping the latest", slog.String("tool", c.Name()))
	}
}

// RegisterPrompt adds p. A later registration of the same name wins.
func (r *Registries) RegisterPrompt(p Prompt) {
	if r.Prompts.Register(p.Name(), p) {
		r.logger.Warn("Prompt registered twice, keeping the latest", slog.String("prompt", p.Name()))
	}
}

// RegisterContributors registers every contributor's capabilities, cluster
// group first, then domain, then utility. Contributors within a group keep
// the order they were passed in.
func (r *Registries) RegisterContributors(contributors ...Contributor) {
	sorted := append([]Contributor(nil), contributors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Group() < sorted[j].Group()
	})

	for _, contributor := range sorted {
		group := contributor.Group()
		for _, c := range contributor.Capabilities() {
			if c.Group == GroupUnset {
				c.Group = group
			}
			r.RegisterCapability(c)
		}
	}
}

// RegisterPromptSources registers every source's prompts in order.
func (r *Registries) RegisterPromptSources(sources ...PromptSource) {
	for _, source := range sources {
		for _, p := range source.Prompts() {
			r.RegisterPrompt(p)
		}
	}
}
