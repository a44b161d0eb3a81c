package pipeline

import (
	"fmt"
	"time"

	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/logger"
)

// Stage names. Downstream stages reference upstream results strictly by
// these names.
const (
	StageML           = "ml_assessment"
	StageRule         = "rule_assessment"
	StageCoordination = "coordination"
	StageDecision     = "decision"
	StageExplanation  = "explanation"
	StageQuery        = "query"
)

// Options configures stage construction.
type Options struct {
	// StageTimeout bounds each capability invocation. 0 disables.
	StageTimeout time.Duration
	// Log, when set, wraps every stage with execution logging.
	Log *logger.Logger
	// Topologies, when set, is consulted for stage layouts by name before
	// the built-in ones apply.
	Topologies TopologyLoader
}

// Topology is a declarative stage layout. The two built-in topologies cover
// realtime and non-realtime screening; custom layouts can be loaded from
// YAML (see TopologyLoader).
type Topology struct {
	Name   string     `yaml:"name"`
	Stages []StageDef `yaml:"stages"`
}

// StageDef defines one stage within a topology.
type StageDef struct {
	// Name is the stage identifier; it must map to a capability port.
	Name string `yaml:"name"`
	// DependsOn lists stage names this stage depends on.
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// DefaultTopology returns the built-in stage layout for a transaction class.
// Both layouts run the two assessments before coordination; the conditional
// stage reachable from coordination differs: decision for realtime,
// explanation for non-realtime.
func DefaultTopology(realtime bool) *Topology {
	conditional := StageExplanation
	name := "standard-screening"
	if realtime {
		conditional = StageDecision
		name = "realtime-screening"
	}
	return &Topology{
		Name: name,
		Stages: []StageDef{
			{Name: StageML},
			{Name: StageRule},
			{Name: StageCoordination, DependsOn: []string{StageML, StageRule}},
			{Name: conditional, DependsOn: []string{StageCoordination}},
		},
	}
}

// BuildGraph constructs the screening graph for a transaction using the
// built-in topology selected by tx.IsRealtime.
func BuildGraph(tx fraud.Transaction, ports Ports, opts Options) *Graph {
	// Built-in topologies only name known stages, so this cannot fail.
	g, _ := BuildGraphFrom(DefaultTopology(tx.IsRealtime), tx, ports, opts)
	return g
}

// BuildGraphFrom constructs a graph from an explicit topology. It fails when
// a stage definition names a stage no port serves.
func BuildGraphFrom(topo *Topology, tx fraud.Transaction, ports Ports, opts Options) (*Graph, error) {
	g := &Graph{Stages: make(map[string]Stage, len(topo.Stages))}

	for _, def := range topo.Stages {
		port := ports.ForStage(def.Name)
		if port == nil {
			return nil, fmt.Errorf("pipeline: topology %q: no port serves stage %q", topo.Name, def.Name)
		}
		g.Stages[def.Name] = newStage(def.Name, tx, port, opts)
		for _, dep := range def.DependsOn {
			g.Edges = append(g.Edges, Edge{From: dep, To: def.Name})
		}
	}

	return g, nil
}

// SingleStage builds a one-stage graph. The interactive session uses this
// for ad-hoc query sub-pipelines.
func SingleStage(name string, tx fraud.Transaction, port Port, opts Options) *Graph {
	return &Graph{
		Stages: map[string]Stage{name: newStage(name, tx, port, opts)},
	}
}

func newStage(name string, tx fraud.Transaction, port Port, opts Options) Stage {
	stage := FromPort(StageConfig{
		Name:        name,
		Transaction: tx,
		Port:        port,
		Timeout:     opts.StageTimeout,
		Critical:    name == StageCoordination,
	})
	if opts.Log != nil {
		stage = WithLogging(stage, opts.Log)
	}
	return stage
}
