// Package prompts provides the guidance prompts: Fabric deployment guides,
// troubleshooting playbooks and Vault integration walkthroughs. Texts are
// embedded at build time.
package prompts

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/dispatch"
)

//go:embed content
var content embed.FS

const (
	defaultEnvironment = "development"
	production         = "production"
)

var (
	components = []string{"ca", "peer", "orderer", "channel", "chaincode"}
	issues     = []string{"connection", "certificate", "deployment", "performance"}
	setupTypes = []string{"initial", "ca-setup", "peer-setup", "orderer-setup"}
)

// listTools maps a component to the tool that lists it.
var listTools = map[string]string{
	"ca":        "hlf-list-cas",
	"peer":      "hlf-list-peers",
	"orderer":   "hlf-list-orderers",
	"channel":   "hlf-list-main-channels",
	"chaincode": "hlf-list-chaincode",
}

type guide struct {
	Title       string   `json:"title"`
	Steps       []string `json:"steps"`
	Production  []string `json:"production"`
	Development []string `json:"development"`
}

// Catalogue renders the embedded prompts.
type Catalogue struct {
	guides       map[string]guide
	deployment   *template.Template
	troubleshoot map[string]string
	toolsFooter  string
	vault        map[string]string
}

// Load parses the embedded content.
func Load() (*Catalogue, error) {
	return load(content)
}

func load(fsys fs.FS) (*Catalogue, error) {
	c := &Catalogue{troubleshoot: map[string]string{}, vault: map[string]string{}}

	raw, err := fs.ReadFile(fsys, "content/deployment.yaml")
	if err != nil {
		return nil, fmt.Errorf("read deployment guides: %w", err)
	}
	if err := yaml.UnmarshalStrict(raw, &c.guides); err != nil {
		return nil, fmt.Errorf("parse deployment guides: %w", err)
	}
	for _, comp := range components {
		if _, ok := c.guides[comp]; !ok {
			return nil, fmt.Errorf("deployment guide for %q is missing", comp)
		}
	}

	c.deployment, err = template.New("deployment.md.tmpl").
		Option("missingkey=error").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(fsys, "content/deployment.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse deployment template: %w", err)
	}

	for _, issue := range issues {
		if c.troubleshoot[issue], err = readText(fsys, "content/troubleshooting/"+issue+".md"); err != nil {
			return nil, err
		}
	}
	if c.toolsFooter, err = readText(fsys, "content/troubleshooting/tools.md"); err != nil {
		return nil, err
	}
	for _, st := range setupTypes {
		if c.vault[st], err = readText(fsys, "content/vault/"+st+".md"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func readText(fsys fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Prompts implements dispatch.PromptSource.
func (c *Catalogue) Prompts() []dispatch.Prompt {
	return []dispatch.Prompt{
		{
			Prompt: mcp.NewPrompt("hlf-deployment-guide",
				mcp.WithPromptDescription("Get guidance for deploying Hyperledger Fabric components"),
				mcp.WithArgument("component",
					mcp.ArgumentDescription("Component to deploy (ca, peer, orderer, channel, chaincode)"),
					mcp.RequiredArgument(),
				),
				mcp.WithArgument("environment",
					mcp.ArgumentDescription("Target environment (development, staging, production)"),
				),
			),
			Handler: c.deploymentGuide,
		},
		{
			Prompt: mcp.NewPrompt("hlf-troubleshooting",
				mcp.WithPromptDescription("Get troubleshooting guidance for Hyperledger Fabric issues"),
				mcp.WithArgument("issue",
					mcp.ArgumentDescription("Type of issue (connection, certificate, deployment, performance)"),
					mcp.RequiredArgument(),
				),
				mcp.WithArgument("component",
					mcp.ArgumentDescription("Affected component (ca, peer, orderer, channel, chaincode)"),
				),
			),
			Handler: c.troubleshooting,
		},
		{
			Prompt: mcp.NewPrompt("vault-integration",
				mcp.WithPromptDescription("Get guidance for HashiCorp Vault integration with Hyperledger Fabric"),
				mcp.WithArgument("setup_type",
					mcp.ArgumentDescription("Type of setup (initial, ca-setup, peer-setup, orderer-setup)"),
					mcp.RequiredArgument(),
				),
			),
			Handler: c.vaultIntegration,
		},
	}
}

func assistant(text string) []mcp.PromptMessage {
	return []mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(text))}
}

// askFor is returned when the selector argument is missing or unknown.
func askFor(what string, valid []string) []mcp.PromptMessage {
	text := fmt.Sprintf("Please specify a valid %s: %s", what, oxford(valid))
	return []mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text))}
}

// oxford joins values as "a, b, or c".
func oxford(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + ", or " + values[len(values)-1]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c *Catalogue) deploymentGuide(_ context.Context, args map[string]string) ([]mcp.PromptMessage, error) {
	g, ok := c.guides[normalize(args["component"])]
	if !ok {
		return askFor("component", components), nil
	}

	env := normalize(args["environment"])
	if env == "" {
		env = defaultEnvironment
	}
	data := struct {
		Title          string
		Environment    string
		Flavor         string
		Steps          []string
		Considerations []string
	}{
		Title:          g.Title,
		Environment:    cases.Title(language.English).String(env),
		Flavor:         "Development",
		Steps:          g.Steps,
		Considerations: g.Development,
	}
	if env == production {
		data.Flavor = "Production"
		data.Considerations = g.Production
	}

	var buf bytes.Buffer
	if err := c.deployment.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render deployment guide: %w", err)
	}
	return assistant(strings.TrimSpace(buf.String())), nil
}

func (c *Catalogue) troubleshooting(_ context.Context, args map[string]string) ([]mcp.PromptMessage, error) {
	text, ok := c.troubleshoot[normalize(args["issue"])]
	if !ok {
		return askFor("issue type", issues), nil
	}

	var b strings.Builder
	b.WriteString(text)
	if component := normalize(args["component"]); component != "" {
		tool, ok := listTools[component]
		if !ok {
			tool = "hlf-list-" + component + "s"
		}
		fmt.Fprintf(&b, "\n\n## Component-Specific Notes for %s:\n", strings.ToUpper(component))
		fmt.Fprintf(&b, "Use the %s and hlf-get-resource tools to get detailed information about your %s components.", tool, component)
	}
	b.WriteString("\n\n")
	b.WriteString(c.toolsFooter)
	return assistant(b.String()), nil
}

func (c *Catalogue) vaultIntegration(_ context.Context, args map[string]string) ([]mcp.PromptMessage, error) {
	text, ok := c.vault[normalize(args["setup_type"])]
	if !ok {
		return askFor("setup type", setupTypes), nil
	}
	return assistant(text), nil
}
