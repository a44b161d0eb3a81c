package pipeline

import (
	"context"
	"sync"
	"time"
)

// Stage execution statuses reported by the engine.
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrent stages per level (0 = unlimited).
	MaxParallel int
}

// StageFilter returns true if a stage should execute in this run. Stages
// that don't pass are marked as skipped; the executor uses this to run only
// the branch the coordinator selected.
type StageFilter func(stageName string, exec *ExecutionContext) bool

// Report holds the outcome of a graph execution.
type Report struct {
	Stages   map[string]StageReport
	Duration time.Duration
}

// StageReport holds the outcome of a single stage execution.
type StageReport struct {
	Name     string
	Status   string // completed | skipped | failed
	Duration time.Duration
	Error    error
}

// Execute runs the graph's stages level by level. Completed stage results
// are recorded into exec in completion order; failed stages record nothing.
func (e *Engine) Execute(ctx context.Context, g *Graph, exec *ExecutionContext, filter StageFilter) (*Report, error) {
	start := time.Now()

	levels, err := BuildLevels(g)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Stages: make(map[string]StageReport),
	}

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Determine which stages to run in this level
		var toRun []string
		for _, name := range level {
			if filter != nil && !filter(name, exec) {
				report.Stages[name] = StageReport{
					Name:   name,
					Status: StatusSkipped,
				}
				continue
			}
			toRun = append(toRun, name)
		}

		if len(toRun) == 0 {
			continue
		}

		e.executeLevel(ctx, g, exec, toRun, report)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// executeLevel runs independent stages of one level concurrently.
func (e *Engine) executeLevel(ctx context.Context, g *Graph, exec *ExecutionContext, names []string, report *Report) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, e.concurrency(len(names)))

	for _, name := range names {
		wg.Add(1)
		go func(stageName string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sr := e.executeStage(ctx, g.Stages[stageName], exec)
			mu.Lock()
			report.Stages[stageName] = sr
			mu.Unlock()
		}(name)
	}

	wg.Wait()
}

func (e *Engine) executeStage(ctx context.Context, stage Stage, exec *ExecutionContext) StageReport {
	start := time.Now()
	result, err := stage.Run(ctx, exec)
	duration := time.Since(start)

	if err != nil {
		return StageReport{
			Name:     stage.Name(),
			Status:   StatusFailed,
			Duration: duration,
			Error:    err,
		}
	}

	exec.Record(stage.Name(), result)
	return StageReport{
		Name:     stage.Name(),
		Status:   StatusCompleted,
		Duration: duration,
	}
}

func (e *Engine) concurrency(levelSize int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}
