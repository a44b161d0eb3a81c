package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// TopologyLoader loads topology definitions by name.
type TopologyLoader interface {
	Load(name string) (*Topology, error)
}

// FileTopologyLoader loads topologies from YAML files on disk.
type FileTopologyLoader struct {
	dirs []string
}

// NewFileTopologyLoader creates a loader that searches the given directories
// for topology YAML files.
func NewFileTopologyLoader(dirs ...string) TopologyLoader {
	return &FileTopologyLoader{dirs: dirs}
}

// Load searches for a topology YAML file by name across configured
// directories. It looks for {name}.yaml and {name}.yml in each directory.
func (l *FileTopologyLoader) Load(name string) (*Topology, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if t, err := loadTopologyFile(path); err == nil {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("pipeline: topology %q not found in %v", name, l.dirs)
}

func loadTopologyFile(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("pipeline: parsing %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", path, err)
	}
	return &t, nil
}

// Validate checks topology structural integrity: unique stage names and
// dependencies that reference defined stages.
func (t *Topology) Validate() error {
	if len(t.Stages) == 0 {
		return fmt.Errorf("topology %q has no stages", t.Name)
	}
	seen := make(map[string]bool, len(t.Stages))
	for _, def := range t.Stages {
		if def.Name == "" {
			return fmt.Errorf("topology %q has a stage without a name", t.Name)
		}
		if seen[def.Name] {
			return fmt.Errorf("topology %q defines stage %q twice", t.Name, def.Name)
		}
		seen[def.Name] = true
	}
	for _, def := range t.Stages {
		for _, dep := range def.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("topology %q: stage %q depends on unknown stage %q", t.Name, def.Name, dep)
			}
		}
	}
	return nil
}
