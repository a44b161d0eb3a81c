package agent

import "github.com/kbukum/fraudguard/pipeline"

// Suite bundles a full capability set: the five pipeline ports plus the
// query capability used by interactive sessions.
type Suite struct {
	ports pipeline.Ports
	query func(question string) pipeline.Port
}

// Ports returns the pipeline's capability set.
func (s *Suite) Ports() pipeline.Ports { return s.ports }

// QueryPort builds a port that answers one free-text question about the
// transaction under review.
func (s *Suite) QueryPort(question string) pipeline.Port {
	return s.query(question)
}
