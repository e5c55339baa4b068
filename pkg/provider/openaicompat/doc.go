// Package openaicompat implements the provider contract for any backend
// speaking the OpenAI Chat Completions protocol. It handles request
// serialization, buffered response parsing, SSE stream decoding through the
// shared tool-call accumulator, embeddings, and error mapping.
//
// Vendor presets (openai, ollama) wrap the Client from this package with
// their endpoint defaults and delegate all protocol work to it.
package openaicompat
