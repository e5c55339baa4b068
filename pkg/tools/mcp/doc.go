// Package mcp connects Model Context Protocol servers to the tool
// execution pipeline. It wraps the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk): a Client manages one
// server session and its discovered tools, and Executor implements
// tools.Executor across any number of servers, routing each call to
// the server that provides the named tool.
//
// Servers are described by a ServerConfig naming the endpoint, the
// transport (streamable-http or SSE), static request headers, and an
// optional auth.TokenSource for bearer credentials.
package mcp
