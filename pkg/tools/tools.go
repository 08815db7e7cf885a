// Package tools abstracts the sync tools under measurement: the candidate
// being benchmarked and the baseline it is compared against. Only the
// invocation contract is fixed; the commands themselves are configurable.
package tools

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dsync-tools/syncbench/pkg/trial"
)

// Tool is one sync command plus the argument shape it expects.
type Tool struct {
	Name    string // identifier recorded in measurements
	Command string // executable name or path

	// baseArgs are inserted before source and dest. The baseline gets -a
	// for archive mode; the candidate takes no flags.
	baseArgs []string

	// sourceSlash appends a trailing slash to the source path. rsync
	// copies the directory itself without it, which would nest the tree
	// one level deeper on every sync.
	sourceSlash bool

	// missingVersion is reported when the command cannot be run at all.
	missingVersion string
}

// Candidate describes the tool under test, invoked as `cmd <source> <dest>`.
func Candidate(command string) Tool {
	return Tool{
		Name:           filepath.Base(command),
		Command:        command,
		missingVersion: "unknown",
	}
}

// Baseline describes the reference tool, invoked as `cmd -a <source>/ <dest>`.
func Baseline(command string) Tool {
	return Tool{
		Name:           filepath.Base(command),
		Command:        command,
		baseArgs:       []string{"-a"},
		sourceSlash:    true,
		missingVersion: "not installed",
	}
}

// Invocation builds the argument list for syncing source to dest.
func (t Tool) Invocation(source, dest string) []string {
	args := make([]string, 0, len(t.baseArgs)+2)
	args = append(args, t.baseArgs...)

	if t.sourceSlash && !strings.HasSuffix(source, "/") {
		source += "/"
	}

	return append(args, source, dest)
}

// Resolve looks the command up in PATH, returning the resolved path.
func (t Tool) Resolve() (string, error) {
	path, err := exec.LookPath(t.Command)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", t.Command, err)
	}
	return path, nil
}

// Version runs `<command> --version` and normalizes the first output line
// down to the bare version string. Tools that cannot be executed report a
// placeholder instead of an error; version capture never blocks a run.
func (t Tool) Version() string {
	result := trial.Run(t.Command, []string{"--version"}, nil)
	if result.Err != nil {
		return t.missingVersion
	}

	line := result.Stdout
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	return normalizeVersion(t.Name, line)
}

// normalizeVersion reduces a version banner to its version token. Handles
// both `dsync 0.3.1` and `rsync  version 3.2.7  protocol version 31`.
func normalizeVersion(name, line string) string {
	fields := strings.Fields(line)

	i := 0
	if i < len(fields) && fields[i] == name {
		i++
	}
	if i < len(fields) && fields[i] == "version" {
		i++
	}
	if i < len(fields) {
		return fields[i]
	}
	return "unknown"
}
