package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/fraudguard/logger"
)

// WithLogging wraps a Stage with execution logging.
// Logs: stage name, duration, extraction status, and success/error.
func WithLogging(stage Stage, log *logger.Logger) Stage {
	return &loggingStage{inner: stage, log: log}
}

type loggingStage struct {
	inner Stage
	log   *logger.Logger
}

func (s *loggingStage) Name() string { return s.inner.Name() }

func (s *loggingStage) Run(ctx context.Context, exec *ExecutionContext) (StageResult, error) {
	start := time.Now()
	result, err := s.inner.Run(ctx, exec)
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldStage:    s.inner.Name(),
		logger.FieldDuration: duration.Milliseconds(),
	}

	if err != nil {
		fields[logger.FieldError] = err.Error()
		s.log.Error("stage failed", fields)
		return result, err
	}

	fields["extraction_ok"] = result.ExtractionOK
	s.log.Debug("stage completed", fields)
	return result, nil
}
