// Package pipeline is the orchestration core of fraudguard.
//
// It models one screening run as a small dependency graph of stages, each
// wrapping a capability port. Stages are grouped into dependency levels
// (Kahn's algorithm); stages within a level are independent and execute
// concurrently. Results propagate to downstream stages through a run-scoped
// ExecutionContext keyed by stage name.
//
// The Executor drives the branching state machine on top of the engine:
// after the coordinator stage completes, exactly one of the conditional
// stages (decision, explanation) is selected by its routing label, or the
// run terminates in an error state when the label cannot be routed.
package pipeline
