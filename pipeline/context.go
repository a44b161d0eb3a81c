package pipeline

import "sync"

// StageResult is the output of one capability invocation.
type StageResult struct {
	// Stage is the producing stage's name.
	Stage string
	// RawText is the capability's raw output, kept verbatim.
	RawText string
	// Structured is the extracted payload. Empty (never nil) when
	// extraction failed; downstream consumers tolerate absent keys.
	Structured map[string]any
	// ExtractionOK distinguishes "legitimately empty" from "parse failed".
	ExtractionOK bool
}

// ContextView is an immutable snapshot of upstream results, keyed by stage
// name, handed to a stage at invocation time.
type ContextView map[string]StageResult

// ExecutionContext collects stage results for one run. It is append-only:
// results are recorded as stages complete (insertion order = completion
// order) and never overwritten or removed. One ExecutionContext belongs to
// exactly one run.
type ExecutionContext struct {
	mu      sync.RWMutex
	results map[string]StageResult
	order   []string
}

// NewExecutionContext creates an empty run context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{results: make(map[string]StageResult)}
}

// Record stores a stage's result. The first write for a stage name wins.
func (e *ExecutionContext) Record(name string, res StageResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.results[name]; exists {
		return
	}
	e.results[name] = res
	e.order = append(e.order, name)
}

// Get returns a recorded stage result.
func (e *ExecutionContext) Get(name string) (StageResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	res, ok := e.results[name]
	return res, ok
}

// View returns a snapshot of all recorded results for consumption by a
// downstream stage.
func (e *ExecutionContext) View() ContextView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	view := make(ContextView, len(e.results))
	for name, res := range e.results {
		view[name] = res
	}
	return view
}

// Completed returns stage names in completion order.
func (e *ExecutionContext) Completed() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Structured returns the structured payload of a stage, or an empty map when
// the stage has not completed. Callers never receive nil.
func (e *ExecutionContext) Structured(name string) map[string]any {
	if res, ok := e.Get(name); ok && res.Structured != nil {
		return res.Structured
	}
	return map[string]any{}
}
