package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/fraudguard/errors"
	"github.com/kbukum/fraudguard/extract"
	"github.com/kbukum/fraudguard/fraud"
)

// Stage is the execution unit in a screening graph.
type Stage interface {
	Name() string
	Run(ctx context.Context, exec *ExecutionContext) (StageResult, error)
}

// StageConfig configures a port-backed stage.
type StageConfig struct {
	// Name is the unique stage identifier in the graph.
	Name string
	// Transaction is the run's input record.
	Transaction fraud.Transaction
	// Port is the capability to invoke.
	Port Port
	// Timeout bounds the invocation. 0 means no stage-level timeout.
	Timeout time.Duration
	// Critical marks a stage whose failure must abort the run instead of
	// degrading to an empty result. Only the coordinator is critical: its
	// routing label cannot sensibly default.
	Critical bool
}

// FromPort bridges a capability Port into a graph Stage.
func FromPort(cfg StageConfig) Stage {
	return &portStage{cfg: cfg}
}

type portStage struct {
	cfg StageConfig
}

func (s *portStage) Name() string { return s.cfg.Name }

// Run invokes the port with a snapshot of the upstream results and extracts
// the structured payload. Invocation failures (including timeouts) degrade
// to an empty result unless the stage is critical.
func (s *portStage) Run(ctx context.Context, exec *ExecutionContext) (StageResult, error) {
	view := exec.View()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	raw, err := s.cfg.Port.Invoke(ctx, s.cfg.Transaction, view)
	if err != nil {
		if s.cfg.Critical {
			if stderrors.Is(err, context.DeadlineExceeded) {
				return StageResult{}, errors.Timeout(s.cfg.Name).
					WithDetail("timeout", s.cfg.Timeout.String()).
					WithCause(err)
			}
			return StageResult{}, errors.ServiceUnavailable(s.cfg.Name).WithCause(err)
		}
		return degradedResult(s.cfg.Name), nil
	}

	structured, ok := extract.Extract(raw)
	return StageResult{
		Stage:        s.cfg.Name,
		RawText:      raw,
		Structured:   structured,
		ExtractionOK: ok,
	}, nil
}

// degradedResult is the empty-but-present result recorded when a leaf
// capability fails or times out. Downstream stages see absent keys, not an
// aborted run.
func degradedResult(name string) StageResult {
	return StageResult{
		Stage:        name,
		Structured:   map[string]any{},
		ExtractionOK: false,
	}
}
