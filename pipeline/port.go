package pipeline

import (
	"context"

	"github.com/kbukum/fraudguard/fraud"
)

// Port is the capability contract the core depends on. Implementations are
// black boxes: the core passes the transaction plus the upstream results and
// treats the return value as opaque text until it goes through extraction.
type Port interface {
	// Name returns the capability's name, used for logging.
	Name() string
	// Invoke runs the capability for one transaction.
	Invoke(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error)
}

// PortFunc adapts a function to the Port interface.
type PortFunc struct {
	PortName string
	Fn       func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error)
}

func (p PortFunc) Name() string { return p.PortName }

func (p PortFunc) Invoke(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
	return p.Fn(ctx, tx, upstream)
}

// Ports bundles the capability set one screening run needs.
type Ports struct {
	ML          Port
	Rule        Port
	Coordinator Port
	Decision    Port
	Explanation Port
}

// ForStage resolves the port serving a stage name, or nil for an unknown
// stage.
func (p Ports) ForStage(name string) Port {
	switch name {
	case StageML:
		return p.ML
	case StageRule:
		return p.Rule
	case StageCoordination:
		return p.Coordinator
	case StageDecision:
		return p.Decision
	case StageExplanation:
		return p.Explanation
	}
	return nil
}
