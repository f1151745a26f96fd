package dispatch

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := NewRegistry[string]()

	assert.False(t, r.Register("a", "first"))
	assert.False(t, r.Register("b", "second"))
	assert.False(t, r.Register("c", "third"))
	assert.True(t, r.Register("a", "replaced"))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	assert.Equal(t, []string{"replaced", "second", "third"}, r.All())

	v, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "replaced", v)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry[int]()

	assert.Equal(t, 0, r.Len())
	assert.NotNil(t, r.All())
	assert.Empty(t, r.All())
}

type stubContributor struct {
	group Group
	names []string
}

func (s stubContributor) Group() Group { return s.group }

func (s stubContributor) Capabilities() []Capability {
	out := make([]Capability, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, Capability{
			Tool: mcp.NewTool(name),
			Handler: func(context.Context, mcp.CallToolRequest) (any, error) {
				return name, nil
			},
		})
	}
	return out
}

func TestRegisterContributors_GroupOrder(t *testing.T) {
	regs := NewRegistries(nil)

	regs.RegisterContributors(
		stubContributor{group: GroupUtility, names: []string{"parse-yaml"}},
		stubContributor{group: GroupDomain, names: []string{"hlf-list-peers", "hlf-list-cas"}},
		stubContributor{group: GroupCluster, names: []string{"k8s-list-pods"}},
		stubContributor{group: GroupDomain, names: []string{"hlf-check-operator"}},
	)

	assert.Equal(t, []string{
		"k8s-list-pods",
		"hlf-list-peers",
		"hlf-list-cas",
		"hlf-check-operator",
		"parse-yaml",
	}, regs.Capabilities.Names())

	c, ok := regs.Capabilities.Lookup("hlf-list-cas")
	require.True(t, ok)
	assert.Equal(t, GroupDomain, c.Group)
}

func TestRegisterCapability_LastWinsKeepsPosition(t *testing.T) {
	regs := NewRegistries(nil)

	regs.RegisterContributors(
		stubContributor{group: GroupCluster, names: []string{"dup", "other"}},
	)
	regs.RegisterCapability(Capability{
		Tool:  mcp.NewTool("dup", mcp.WithDescription("second")),
		Group: GroupUtility,
		Handler: func(context.Context, mcp.CallToolRequest) (any, error) {
			return "second", nil
		},
	})

	assert.Equal(t, []string{"dup", "other"}, regs.Capabilities.Names())
	c, _ := regs.Capabilities.Lookup("dup")
	assert.Equal(t, "second", c.Tool.Description)
}

func TestRegistries_MiddlewareAppliedInOrder(t *testing.T) {
	var trail []string
	mw := func(tag string) CapabilityMiddleware {
		return func(c Capability) Capability {
			next := c.Handler
			c.Handler = func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
				trail = append(trail, tag)
				return next(ctx, req)
			}
			return c
		}
	}

	regs := NewRegistries(nil, mw("inner"), mw("outer"))
	regs.RegisterContributors(stubContributor{group: GroupCluster, names: []string{"t"}})

	c, ok := regs.Capabilities.Lookup("t")
	require.True(t, ok)
	_, err := c.Handler(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, trail)
}

type stubPrompts []string

func (s stubPrompts) Prompts() []Prompt {
	out := make([]Prompt, 0, len(s))
	for _, name := range s {
		out = append(out, Prompt{Prompt: mcp.NewPrompt(name)})
	}
	return out
}

func TestRegisterPromptSources(t *testing.T) {
	regs := NewRegistries(nil)
	regs.RegisterPromptSources(stubPrompts{"b", "a"}, stubPrompts{"b"})

	assert.Equal(t, []string{"b", "a"}, regs.Prompts.Names())
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "kubernetes", GroupCluster.String())
	assert.Equal(t, "hlf", GroupDomain.String())
	assert.Equal(t, "utility", GroupUtility.String())
	assert.Equal(t, "unset", GroupUnset.String())
}
