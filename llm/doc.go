// Package llm defines the provider abstraction the capability agents are
// built on: a universal completion request/response shape and a Provider
// interface that concrete backends (Ollama, test stubs) implement.
//
// The orchestration core never imports this package directly; it sees
// capability output only as opaque text.
package llm
