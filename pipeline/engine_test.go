package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/fraudguard/errors"
	"github.com/kbukum/fraudguard/fraud"
)

func portReturning(name, out string) Port {
	return PortFunc{PortName: name, Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		return out, nil
	}}
}

func TestEngineExecutesLevelsInOrder(t *testing.T) {
	var coordSawUpstream atomic.Bool

	g := &Graph{
		Stages: map[string]Stage{
			"a": FromPort(StageConfig{Name: "a", Port: portReturning("a", `{"v": 1}`)}),
			"b": FromPort(StageConfig{Name: "b", Port: portReturning("b", `{"v": 2}`)}),
			"c": FromPort(StageConfig{Name: "c", Port: PortFunc{PortName: "c", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
				_, hasA := upstream["a"]
				_, hasB := upstream["b"]
				coordSawUpstream.Store(hasA && hasB)
				return "{}", nil
			}}}),
		},
		Edges: []Edge{
			{From: "a", To: "c"},
			{From: "b", To: "c"},
		},
	}

	engine := &Engine{}
	exec := NewExecutionContext()
	report, err := engine.Execute(context.Background(), g, exec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !coordSawUpstream.Load() {
		t.Fatal("downstream stage should see both upstream results")
	}
	for _, name := range []string{"a", "b", "c"} {
		if report.Stages[name].Status != StatusCompleted {
			t.Fatalf("stage %s: expected completed, got %s", name, report.Stages[name].Status)
		}
	}
}

func TestEngineRunsLevelConcurrently(t *testing.T) {
	release := make(chan struct{})
	blocking := func(name string) Port {
		return PortFunc{PortName: name, Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
			select {
			case <-release:
				return "{}", nil
			case <-time.After(5 * time.Second):
				return "", errors.New("deadlock: peer never started")
			}
		}}
	}

	g := &Graph{
		Stages: map[string]Stage{
			"a": FromPort(StageConfig{Name: "a", Port: blocking("a")}),
			"b": FromPort(StageConfig{Name: "b", Port: PortFunc{PortName: "b", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
				close(release)
				return "{}", nil
			}}}),
		},
	}

	engine := &Engine{}
	exec := NewExecutionContext()
	report, err := engine.Execute(context.Background(), g, exec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stages["a"].Status != StatusCompleted {
		t.Fatalf("stage a: expected completed, got %s", report.Stages["a"].Status)
	}
}

func TestEngineMaxParallel(t *testing.T) {
	var active, peak atomic.Int32
	port := PortFunc{PortName: "p", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		cur := active.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return "{}", nil
	}}

	g := &Graph{Stages: map[string]Stage{}}
	for _, name := range []string{"a", "b", "c", "d"} {
		g.Stages[name] = FromPort(StageConfig{Name: name, Port: port})
	}

	engine := &Engine{MaxParallel: 2}
	if _, err := engine.Execute(context.Background(), g, NewExecutionContext(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent stages, observed %d", peak.Load())
	}
}

func TestEngineFilterSkips(t *testing.T) {
	g := &Graph{
		Stages: map[string]Stage{
			"a": FromPort(StageConfig{Name: "a", Port: portReturning("a", "{}")}),
			"b": FromPort(StageConfig{Name: "b", Port: portReturning("b", "{}")}),
		},
	}

	filter := func(name string, exec *ExecutionContext) bool { return name != "b" }

	engine := &Engine{}
	exec := NewExecutionContext()
	report, err := engine.Execute(context.Background(), g, exec, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stages["b"].Status != StatusSkipped {
		t.Fatalf("expected b skipped, got %s", report.Stages["b"].Status)
	}
	if _, ok := exec.Get("b"); ok {
		t.Fatal("skipped stage must not record a result")
	}
}

func TestEngineCriticalFailureReported(t *testing.T) {
	failing := PortFunc{PortName: "c", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		return "", errors.New("connection refused")
	}}

	g := &Graph{
		Stages: map[string]Stage{
			"c": FromPort(StageConfig{Name: "c", Port: failing, Critical: true}),
		},
	}

	engine := &Engine{}
	exec := NewExecutionContext()
	report, err := engine.Execute(context.Background(), g, exec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stages["c"].Status != StatusFailed {
		t.Fatalf("expected failed, got %s", report.Stages["c"].Status)
	}
	if report.Stages["c"].Error == nil {
		t.Fatal("expected stage error in report")
	}
	if _, ok := exec.Get("c"); ok {
		t.Fatal("failed stage must not record a result")
	}
}

func TestEngineNonCriticalFailureDegrades(t *testing.T) {
	failing := PortFunc{PortName: "a", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		return "", errors.New("timeout")
	}}

	g := &Graph{
		Stages: map[string]Stage{
			"a": FromPort(StageConfig{Name: "a", Port: failing}),
		},
	}

	engine := &Engine{}
	exec := NewExecutionContext()
	report, err := engine.Execute(context.Background(), g, exec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Stages["a"].Status != StatusCompleted {
		t.Fatalf("expected degraded completion, got %s", report.Stages["a"].Status)
	}
	res, ok := exec.Get("a")
	if !ok {
		t.Fatal("expected degraded result to be recorded")
	}
	if res.ExtractionOK {
		t.Fatal("degraded result must not claim successful extraction")
	}
	if res.Structured == nil || len(res.Structured) != 0 {
		t.Fatalf("expected empty structured payload, got %v", res.Structured)
	}
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Graph{
		Stages: map[string]Stage{
			"a": FromPort(StageConfig{Name: "a", Port: portReturning("a", "{}")}),
		},
	}

	engine := &Engine{}
	if _, err := engine.Execute(ctx, g, NewExecutionContext(), nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestStageTimeout(t *testing.T) {
	slow := PortFunc{PortName: "a", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "{}", nil
		}
	}}

	stage := FromPort(StageConfig{Name: "a", Port: slow, Timeout: 10 * time.Millisecond})
	res, err := stage.Run(context.Background(), NewExecutionContext())
	if err != nil {
		t.Fatalf("non-critical timeout should degrade, got error: %v", err)
	}
	if res.ExtractionOK {
		t.Fatal("timed-out stage must degrade to an empty result")
	}
}

func TestCriticalStageTimeoutCode(t *testing.T) {
	slow := PortFunc{PortName: "c", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "{}", nil
		}
	}}

	stage := FromPort(StageConfig{Name: "c", Port: slow, Timeout: 10 * time.Millisecond, Critical: true})
	_, err := stage.Run(context.Background(), NewExecutionContext())
	if err == nil {
		t.Fatal("expected error from critical timeout")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeTimeout) {
		t.Fatalf("expected timeout code, got: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected the deadline error as cause")
	}
}

func TestCriticalStageFailureCode(t *testing.T) {
	failing := PortFunc{PortName: "c", Fn: func(ctx context.Context, tx fraud.Transaction, upstream ContextView) (string, error) {
		return "", errors.New("connection refused")
	}}

	stage := FromPort(StageConfig{Name: "c", Port: failing, Critical: true})
	_, err := stage.Run(context.Background(), NewExecutionContext())
	if err == nil {
		t.Fatal("expected error from critical failure")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected service unavailable code, got: %v", err)
	}
}
