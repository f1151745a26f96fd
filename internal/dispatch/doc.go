// Package dispatch routes MCP JSON-RPC messages to registered capabilities
// (tools) and prompts.
//
// The Engine owns tools/list, tools/call, prompts/list and prompts/get.
// Everything else, including initialize, ping and notifications, is passed to
// the mcp-go core server.
//
// Tool and prompt failures are reported differently. An unknown or failing
// tool yields a successful JSON-RPC response whose result has isError set.
// An unknown prompt is a JSON-RPC error.
package dispatch
