// Package provider defines the capability interface for LLM inference
// backends and the shared machinery every adapter builds on: the tool-call
// accumulator that reassembles fragmented argument streams, the bounded
// event channel discipline, and the explicit provider registry.
//
// Each adapter (openaicompat, anthropic, and the thin vendor presets built
// on them) handles its own wire protocol internally and emits only the
// canonical types from pkg/api, keeping vendor protocol details invisible
// to the engine and to SDK consumers.
package provider
