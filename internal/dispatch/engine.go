package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// CoreHandler answers the protocol methods the engine does not own.
// *server.MCPServer from mcp-go satisfies it.
type CoreHandler interface {
	HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage
}

// Engine routes JSON-RPC messages. It is safe for concurrent use once the
// registries are populated.
type Engine struct {
	registries *Registries
	core       CoreHandler
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds an engine over registries. core may be nil, in which case
// every method the engine does not own is answered with method-not-found.
func NewEngine(registries *Registries, core CoreHandler, opts ...EngineOption) *Engine {
	e := &Engine{
		registries: registries,
		core:       core,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListCapabilities returns every tool in registration order.
func (e *Engine) ListCapabilities() mcp.ListToolsResult {
	caps := e.registries.Capabilities.All()
	tools := make([]mcp.Tool, 0, len(caps))
	for _, c := range caps {
		tools = append(tools, c.Tool)
	}
	return mcp.ListToolsResult{Tools: tools}
}

// ListPrompts returns every prompt in registration order.
func (e *Engine) ListPrompts() mcp.ListPromptsResult {
	all := e.registries.Prompts.All()
	prompts := make([]mcp.Prompt, 0, len(all))
	for _, p := range all {
		prompts = append(prompts, p.Prompt)
	}
	return mcp.ListPromptsResult{Prompts: prompts}
}

// Invoke runs the named tool. It always returns a result: unknown tools,
// handler errors and panics are reported with isError set.
func (e *Engine) Invoke(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult) {
	capability, ok := e.registries.Capabilities.Lookup(name)
	if !ok {
		e.logger.WarnContext(ctx, "Unknown tool requested", slog.String(logging.KeyTool, name))
		return mcp.NewToolResultError("Unknown tool: " + name)
	}
	if args == nil {
		args = map[string]any{}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "Tool handler panicked",
				slog.String(logging.KeyTool, name),
				slog.Any("panic", r))
			result = failure(name, fmt.Errorf("internal error: %v", r))
		}
	}()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	out, err := capability.Handler(ctx, req)
	if err != nil {
		e.logger.DebugContext(ctx, "Tool failed", slog.String(logging.KeyTool, name), logging.Err(err))
		return failure(name, err)
	}
	return render(name, out)
}

// GetPrompt renders the named prompt. An unknown name is a protocol error.
func (e *Engine) GetPrompt(ctx context.Context, name string, args map[string]string) (result *mcp.GetPromptResult, err error) {
	prompt, ok := e.registries.Prompts.Lookup(name)
	if !ok {
		return nil, &ProtocolError{Code: CodeInvalidParams, Message: "Unknown prompt: " + name}
	}
	if args == nil {
		args = map[string]string{}
	}

	ctx, span := instrumentation.StartSpan(ctx, "prompt."+name, attribute.String(instrumentation.SpanAttrPrompt, name))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "Prompt handler panicked",
				slog.String(logging.KeyPrompt, name),
				slog.Any("panic", r))
			result, err = nil, &ProtocolError{Code: CodeInternalError, Message: fmt.Sprintf("Error rendering prompt %s", name)}
		}
	}()

	messages, err := prompt.Handler(ctx, args)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, &ProtocolError{Code: CodeInternalError, Message: fmt.Sprintf("Error rendering prompt %s: %v", name, err)}
	}
	return &mcp.GetPromptResult{
		Description: prompt.Prompt.Description,
		Messages:    messages,
	}, nil
}

// HandleMessage processes one JSON-RPC message or batch and returns the
// encoded response. It returns nil when nothing needs to be sent back, which
// is the case for notifications. An error means the response could not be
// produced at all.
func (e *Engine) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return encode(newError(nil, CodeParseError, "Parse error"))
	}

	if trimmed[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return encode(newError(nil, CodeParseError, "Parse error"))
		}
		if len(batch) == 0 {
			return encode(newError(nil, CodeInvalidRequest, "Invalid Request"))
		}

		responses := make([]any, 0, len(batch))
		for _, item := range batch {
			if resp, ok := e.handleOne(ctx, item); ok {
				responses = append(responses, resp)
			}
		}
		if len(responses) == 0 {
			return nil, nil
		}
		return encode(responses)
	}

	resp, ok := e.handleOne(ctx, trimmed)
	if !ok {
		return nil, nil
	}
	return encode(resp)
}

func (e *Engine) handleOne(ctx context.Context, raw json.RawMessage) (any, bool) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return newError(nil, CodeInvalidRequest, "Invalid Request"), true
	}
	if req.JSONRPC != JSONRPCVersion || req.Method == "" {
		return newError(req.ID, CodeInvalidRequest, "Invalid Request"), true
	}

	var resp Response
	switch req.Method {
	case MethodToolsList:
		resp = newResult(req.ID, e.ListCapabilities())

	case MethodPromptsList:
		resp = newResult(req.ID, e.ListPrompts())

	case MethodToolsCall:
		var params callToolParams
		if err := decodeParams(req.Params, &params); err != nil {
			resp = newError(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
			break
		}
		if params.Name == "" {
			resp = newError(req.ID, CodeInvalidParams, "Invalid params: missing tool name")
			break
		}
		resp = newResult(req.ID, e.Invoke(ctx, params.Name, params.Arguments))

	case MethodPromptsGet:
		var params getPromptParams
		if err := decodeParams(req.Params, &params); err != nil {
			resp = newError(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
			break
		}
		result, err := e.GetPrompt(ctx, params.Name, params.Arguments)
		if err != nil {
			resp = errorResponse(req.ID, err)
			break
		}
		resp = newResult(req.ID, result)

	default:
		return e.delegate(ctx, req, raw)
	}

	if req.IsNotification() {
		return nil, false
	}
	return resp, true
}

func (e *Engine) delegate(ctx context.Context, req Request, raw json.RawMessage) (any, bool) {
	if e.core == nil {
		if req.IsNotification() {
			return nil, false
		}
		return newError(req.ID, CodeMethodNotFound, "Method not found: "+req.Method), true
	}

	msg := e.core.HandleMessage(ctx, raw)
	if msg == nil || req.IsNotification() {
		return nil, false
	}
	return msg, true
}

func decodeParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, into)
}

func errorResponse(id json.RawMessage, err error) Response {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return Response{JSONRPC: JSONRPCVersion, ID: id, Error: pe}
	}
	return newError(id, CodeInternalError, err.Error())
}

func encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

func failure(name string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Error executing %s: %s", name, err.Error()))
}

// render converts a handler's return value into a tool result.
func render(name string, out any) *mcp.CallToolResult {
	switch v := out.(type) {
	case *mcp.CallToolResult:
		if v != nil {
			return v
		}
	case string:
		return mcp.NewToolResultText(v)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return failure(name, fmt.Errorf("encode result: %w", err))
	}
	return mcp.NewToolResultText(string(data))
}
