// Package gitinfo captures the source-control state recorded with each
// benchmark run, so a regression can be traced back to the commit that
// introduced it.
package gitinfo

import (
	"strings"

	"github.com/dsync-tools/syncbench/pkg/trial"
)

// Info describes the state of the working tree a run was started from.
type Info struct {
	Commit string `json:"commit"`
	Branch string `json:"branch"`
	Dirty  bool   `json:"dirty"`
}

// Collect queries git in dir (the current directory when dir is empty).
// Outside a repository, or without git installed, every field falls back
// to unknown with the tree marked dirty; runs are never blocked on git.
func Collect(dir string) Info {
	commit, ok := gitOutput(dir, "rev-parse", "--short", "HEAD")
	if !ok {
		return Info{Commit: "unknown", Branch: "unknown", Dirty: true}
	}

	branch, ok := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if !ok {
		branch = "unknown"
	}

	status, ok := gitOutput(dir, "status", "--porcelain")
	dirty := !ok || status != ""

	return Info{Commit: commit, Branch: branch, Dirty: dirty}
}

func gitOutput(dir string, args ...string) (string, bool) {
	opts := &trial.Options{Dir: dir}
	result := trial.Run("git", args, opts)
	if !result.Success() {
		return "", false
	}
	return strings.TrimSpace(result.Stdout), true
}
