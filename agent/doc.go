// Package agent implements the capability ports the screening pipeline
// invokes: the two assessments, the coordinator, the conditional decision
// and explanation stages, and the query capability of the interactive
// session.
//
// Two suites exist. The LLM suite prompts a model per capability and is the
// production path. The heuristic suite computes every capability
// deterministically from the rule taxonomy and the lookup stores; it needs
// no external service and backs tests and offline runs.
package agent
