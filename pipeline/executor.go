package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/fraudguard/errors"
	"github.com/kbukum/fraudguard/extract"
	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/logger"
)

// State is the lifecycle phase of one screening run.
type State string

const (
	StatePendingMLRule       State = "PENDING_ML_RULE"
	StatePendingCoordination State = "PENDING_COORDINATION"
	StatePendingDecision     State = "PENDING_DECISION"
	StatePendingExplanation  State = "PENDING_EXPLANATION"
	StateApproved            State = "APPROVED"
	StateDone                State = "DONE"
	StateError               State = "ERROR"
)

// Executor drives one screening run per transaction: it builds the graph for
// the transaction's class, executes it with the branch gate, and assembles
// the outcome record.
type Executor struct {
	Engine *Engine
	Ports  Ports
	Opts   Options

	log *logger.Logger
}

// NewExecutor creates an executor over a capability set.
func NewExecutor(ports Ports, opts Options) *Executor {
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Executor{
		Engine: &Engine{},
		Ports:  ports,
		Opts:   opts,
		log:    log.WithComponent("executor"),
	}
}

// Screen runs the full pipeline for one transaction. The returned error
// covers run-level failures only (invalid input, cancelled context); failures
// inside the pipeline, including an unroutable coordinator response, are
// reported through the record's Err field.
func (x *Executor) Screen(ctx context.Context, tx fraud.Transaction) (*fraud.OutcomeRecord, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	r := &run{
		state: StatePendingMLRule,
		log: x.log.WithFields(map[string]interface{}{
			logger.FieldRunID:       runID,
			logger.FieldTransaction: tx.TransactionID,
		}),
	}
	r.log.Info("screening started", logger.Fields(
		"realtime", tx.IsRealtime,
		"state", string(r.state),
	))

	g, err := x.graphFor(tx)
	if err != nil {
		return nil, err
	}
	exec := NewExecutionContext()

	report, err := x.Engine.Execute(ctx, g, exec, r.gate)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{StageML, StageRule} {
		if res, ok := exec.Get(name); ok && !res.ExtractionOK {
			r.log.Warn("assessment degraded to an empty payload",
				logger.ErrorFields(name, errors.ExtractionFailed(name)))
		}
	}

	record := &fraud.OutcomeRecord{
		RunID:          runID,
		Transaction:    tx,
		MLAssessment:   exec.Structured(StageML),
		RuleAssessment: exec.Structured(StageRule),
		Duration:       report.Duration,
	}
	x.assemble(record, r, g, exec, report)

	r.log.Info("screening finished", logger.Fields(
		"state", string(r.state),
		"final_decision", record.FinalDecision,
		"needs_review", record.NeedsReview(),
		logger.FieldDuration, record.Duration.Milliseconds(),
	))
	return record, nil
}

// graphFor resolves the graph for a transaction. When a topology loader is
// configured and carries a layout under the built-in name for the
// transaction's class, that layout overrides the built-in one.
func (x *Executor) graphFor(tx fraud.Transaction) (*Graph, error) {
	def := DefaultTopology(tx.IsRealtime)
	if x.Opts.Topologies != nil {
		if topo, err := x.Opts.Topologies.Load(def.Name); err == nil {
			x.log.Debug("using topology override", logger.Fields("topology", def.Name))
			return BuildGraphFrom(topo, tx, x.Ports, x.Opts)
		}
	}
	return BuildGraph(tx, x.Ports, x.Opts), nil
}

// assemble fills the outcome record from the executed graph and moves the
// run into its terminal state.
func (x *Executor) assemble(record *fraud.OutcomeRecord, r *run, g *Graph, exec *ExecutionContext, report *Report) {
	coordReport, ok := report.Stages[StageCoordination]
	if !ok || coordReport.Status != StatusCompleted {
		r.transition(StateError)
		record.Err = "coordination stage did not complete"
		if coordReport.Error != nil {
			record.Err = coordReport.Error.Error()
		}
		return
	}

	coord, _ := exec.Get(StageCoordination)
	branch := fraud.ParseBranchLabel(coord.RawText)
	if !branch.Recognized {
		r.transition(StateError)
		record.Err = errors.UnroutableBranch(strings.TrimSpace(branch.Raw)).Error()
		return
	}

	switch branch.Label {
	case fraud.LabelApproveTransaction:
		r.transition(StateApproved)
		record.FinalDecision = fraud.DecisionApproved

	case fraud.LabelDecisionAgent:
		if !g.Has(StageDecision) {
			r.transition(StateError)
			record.Err = errors.UnroutableBranch(string(branch.Label)).Error()
			return
		}
		res, _ := exec.Get(StageDecision)
		record.FinalDecision = normalizeDecision(extract.String(res.Structured, "decision"))
		record.Explanation = extract.String(res.Structured, "reasoning")
		if record.FinalDecision == "" {
			r.log.Warn("decision stage produced no usable decision, deferring to manual review",
				logger.ErrorFields(StageDecision, errors.ExtractionFailed(StageDecision)))
		}

	case fraud.LabelGenerateExplanation:
		if !g.Has(StageExplanation) {
			r.transition(StateError)
			record.Err = errors.UnroutableBranch(string(branch.Label)).Error()
			return
		}
		res, _ := exec.Get(StageExplanation)
		record.Explanation = res.RawText
	}

	r.transition(StateDone)
}

// normalizeDecision maps the decision stage's free-form verdict onto the two
// accepted values. Anything else means the stage misbehaved and the record
// falls back to manual review.
func normalizeDecision(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case fraud.DecisionApproved:
		return fraud.DecisionApproved
	case fraud.DecisionDeclined:
		return fraud.DecisionDeclined
	}
	return ""
}

// run carries the per-run state machine. The engine calls gate sequentially
// between levels, so no locking is needed.
type run struct {
	state State
	log   *logger.Logger
}

func (r *run) transition(next State) {
	if r.state == next {
		return
	}
	r.log.Debug("state transition", logger.Fields(
		"from", string(r.state),
		"to", string(next),
	))
	r.state = next
}

// gate is the StageFilter for one screening run. Assessments always run; the
// coordination stage marks the run as coordinating; the conditional stages
// run only when the coordinator selected them.
func (r *run) gate(name string, exec *ExecutionContext) bool {
	switch name {
	case StageCoordination:
		r.transition(StatePendingCoordination)
		return true

	case StageDecision, StageExplanation:
		coord, ok := exec.Get(StageCoordination)
		if !ok {
			return false
		}
		branch := fraud.ParseBranchLabel(coord.RawText)
		if !branch.Recognized {
			return false
		}
		if name == StageDecision && branch.Label == fraud.LabelDecisionAgent {
			r.transition(StatePendingDecision)
			return true
		}
		if name == StageExplanation && branch.Label == fraud.LabelGenerateExplanation {
			r.transition(StatePendingExplanation)
			return true
		}
		return false
	}
	return true
}
