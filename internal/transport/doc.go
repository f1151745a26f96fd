// Package transport carries JSON-RPC messages between MCP clients and the
// dispatch engine.
//
// Two bindings are provided:
//
//   - StdioServer reads newline-delimited messages from an input stream and
//     writes one response line per request. The whole process is one session.
//   - StatelessHandler serves POST requests over HTTP. Every request gets its
//     own short-lived session that is torn down when the response is written
//     or the client disconnects.
//
// Neither binding keeps state between messages.
package transport
