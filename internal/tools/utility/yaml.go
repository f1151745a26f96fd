package utility

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools"
)

type parseArgs struct {
	Content string `json:"content" validate:"required"`
}

type parseResult struct {
	Success bool   `json:"success"`
	Parsed  any    `json:"parsed"`
	Type    string `json:"type"`
}

func parseYAML(_ context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[parseArgs](req)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(args.Content), &parsed); err != nil {
		return nil, fmt.Errorf("YAML parsing failed: %w", err)
	}
	return parseResult{Success: true, Parsed: parsed, Type: kindOf(parsed)}, nil
}

// kindOf names the JSON type of a decoded value.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int64, int:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

type generateArgs struct {
	Data map[string]any `json:"data" validate:"required"`
}

type generateResult struct {
	Success bool   `json:"success"`
	YAML    string `json:"yaml"`
}

func generateYAML(_ context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[generateArgs](req)
	if err != nil {
		return nil, err
	}

	out, err := yaml.Marshal(args.Data)
	if err != nil {
		return nil, fmt.Errorf("YAML generation failed: %w", err)
	}
	return generateResult{Success: true, YAML: string(out)}, nil
}

type applyArgs struct {
	Manifest string `json:"manifest" validate:"required"`
	DryRun   *bool  `json:"dryRun"`
}

type applyEntry struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Action    string `json:"action"`
	Status    string `json:"status"`
}

type applyResult struct {
	DryRun  bool         `json:"dryRun"`
	Results []applyEntry `json:"results"`
	Message string       `json:"message"`
}

// applyManifest walks every document of a manifest and reports what applying
// it would touch. Nothing is written to the cluster.
func applyManifest(_ context.Context, req mcp.CallToolRequest) (any, error) {
	args, err := tools.Bind[applyArgs](req)
	if err != nil {
		return nil, err
	}
	dryRun := args.DryRun == nil || *args.DryRun

	docs, err := splitManifest(args.Manifest)
	if err != nil {
		return nil, fmt.Errorf("manifest parsing failed: %w", err)
	}

	out := applyResult{DryRun: dryRun, Results: []applyEntry{}}
	for _, doc := range docs {
		kind, _ := doc["kind"].(string)
		apiVersion, _ := doc["apiVersion"].(string)
		if kind == "" || apiVersion == "" {
			continue
		}

		meta, _ := doc["metadata"].(map[string]any)
		name, _ := meta["name"].(string)
		namespace, _ := meta["namespace"].(string)

		entry := applyEntry{
			Kind:      kind,
			Name:      tools.OrDefault(name, "unnamed"),
			Namespace: tools.OrDefault(namespace, "default"),
			Action:    "dry-run",
			Status:    "would be applied",
		}
		if !dryRun {
			entry.Action = "apply"
			entry.Status = "not applied: this server is read-only, use kubectl apply"
		}
		out.Results = append(out.Results, entry)
	}

	if dryRun {
		out.Message = "Dry run completed - no resources were modified"
	} else {
		out.Message = "Apply is not supported by this server - use kubectl apply directly"
	}
	return out, nil
}

func splitManifest(manifest string) ([]map[string]any, error) {
	dec := utilyaml.NewYAMLOrJSONDecoder(strings.NewReader(manifest), 4096)

	var docs []map[string]any
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
}
