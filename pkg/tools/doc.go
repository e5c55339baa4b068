// Package tools defines the executor contract the generation loop uses
// to run model-requested tool calls. An Executor hosts the tools of one
// Kind: KindFunc tools are in-process Go functions (see FuncMap), and
// KindMCP tools live on a Model Context Protocol server (see
// pkg/tools/mcp).
//
// The package also carries the allowed-tools filter applied before a
// call reaches any executor. It depends only on pkg/api.
package tools
