// Package scenario defines the synthetic workload descriptors the benchmark
// runs against. Scenarios are either built in or loaded from a YAML file.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied to omitted optional fields when loading scenario files.
// These match the geometry the benchmark has always used, so historical
// runs stay comparable.
const (
	DefaultSizeKB      = 1
	DefaultDirs        = 10
	DefaultDepth       = 3
	DefaultLargeSizeKB = 10000
)

// Scenario describes one synthetic workload: how many files of what size,
// spread over how many directories, plus optional large binary files.
// All fields are resolved values; defaults are applied at load time.
type Scenario struct {
	Name        string
	Files       int
	SizeKB      int
	Dirs        int
	Depth       int
	LargeFiles  int
	LargeSizeKB int
}

// Validate checks that the scenario is runnable. A scenario must have a
// name, at least one file, and no negative counts.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if s.Files < 1 {
		return fmt.Errorf("scenario %q: files must be at least 1, got %d", s.Name, s.Files)
	}
	if s.SizeKB < 0 {
		return fmt.Errorf("scenario %q: size_kb must not be negative, got %d", s.Name, s.SizeKB)
	}
	if s.Dirs < 0 {
		return fmt.Errorf("scenario %q: dirs must not be negative, got %d", s.Name, s.Dirs)
	}
	if s.Depth < 0 {
		return fmt.Errorf("scenario %q: depth must not be negative, got %d", s.Name, s.Depth)
	}
	if s.LargeFiles < 0 {
		return fmt.Errorf("scenario %q: large_files must not be negative, got %d", s.Name, s.LargeFiles)
	}
	if s.LargeSizeKB < 0 {
		return fmt.Errorf("scenario %q: large_size_kb must not be negative, got %d", s.Name, s.LargeSizeKB)
	}
	return nil
}

// Builtin returns the full scenario set in declaration order.
func Builtin() []Scenario {
	return []Scenario{
		{Name: "small_files", Files: 1000, SizeKB: 1, Dirs: 10, Depth: 3, LargeSizeKB: 10000},
		{Name: "large_file", Files: 1, SizeKB: 100000, Dirs: 0, Depth: 3, LargeSizeKB: 10000},
		{Name: "mixed", Files: 500, SizeKB: 10, Dirs: 50, Depth: 3, LargeFiles: 5, LargeSizeKB: 10000},
		{Name: "deep_dirs", Files: 100, SizeKB: 1, Dirs: 100, Depth: 10, LargeSizeKB: 10000},
		{Name: "source_code", Files: 5000, SizeKB: 5, Dirs: 200, Depth: 3, LargeSizeKB: 10000},
	}
}

// Quick returns the reduced set used for smoke runs.
func Quick() []Scenario {
	return []Scenario{
		{Name: "small_files", Files: 100, SizeKB: 1, Dirs: 5, Depth: 3, LargeSizeKB: 10000},
	}
}

// ByName finds a builtin scenario. The second return is false when no
// scenario with that name exists.
func ByName(name string) (Scenario, bool) {
	for _, s := range Builtin() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Names lists the builtin scenario names in declaration order.
func Names() []string {
	builtin := Builtin()
	names := make([]string, len(builtin))
	for i, s := range builtin {
		names[i] = s.Name
	}
	return names
}

// raw is the YAML shape of one scenario. Optional fields are pointers so an
// explicit zero (large_file sets dirs: 0) is distinguishable from omission.
type raw struct {
	Name        string `yaml:"name"`
	Files       int    `yaml:"files"`
	SizeKB      *int   `yaml:"size_kb"`
	Dirs        *int   `yaml:"dirs"`
	Depth       *int   `yaml:"depth"`
	LargeFiles  *int   `yaml:"large_files"`
	LargeSizeKB *int   `yaml:"large_size_kb"`
}

// file is the YAML document shape for scenario files.
type file struct {
	Scenarios []raw `yaml:"scenarios"`
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func (r raw) resolve() Scenario {
	return Scenario{
		Name:        r.Name,
		Files:       r.Files,
		SizeKB:      intOr(r.SizeKB, DefaultSizeKB),
		Dirs:        intOr(r.Dirs, DefaultDirs),
		Depth:       intOr(r.Depth, DefaultDepth),
		LargeFiles:  intOr(r.LargeFiles, 0),
		LargeSizeKB: intOr(r.LargeSizeKB, DefaultLargeSizeKB),
	}
}

// LoadFile reads scenarios from a YAML file. Unknown keys are rejected so a
// typo in a field name fails loudly instead of silently running with
// defaults. Every scenario is validated; order is preserved.
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s defines no scenarios", path)
	}

	scenarios := make([]Scenario, 0, len(f.Scenarios))
	seen := make(map[string]bool, len(f.Scenarios))
	for _, r := range f.Scenarios {
		s := r.resolve()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("scenario file %s: duplicate scenario %q", path, s.Name)
		}
		seen[s.Name] = true
		scenarios = append(scenarios, s)
	}

	return scenarios, nil
}
