package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// echoHandler answers every request with its id and the session it ran in.
type echoHandler struct {
	mu       sync.Mutex
	sessions map[string]int
}

func newEchoHandler() *echoHandler {
	return &echoHandler{sessions: map[string]int{}}
}

func (h *echoHandler) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return json.RawMessage(`{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`), nil
	}
	if req.ID == nil {
		return nil, nil
	}

	session, _ := SessionIDFromContext(ctx)
	h.mu.Lock()
	h.sessions[session]++
	h.mu.Unlock()

	return json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  map[string]string{"method": req.Method, "session": session},
	})
}

func (h *echoHandler) sessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

type handlerFunc func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error)

func (f handlerFunc) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	return f(ctx, raw)
}

var errEngine = errors.New("engine exploded")
