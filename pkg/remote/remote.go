// Package remote drives the SSH control channel used for remote-transport
// benchmarks. The sync tools move the data themselves; this package only
// prepares and removes scratch directories on the far side and answers
// reachability checks.
package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/dsync-tools/syncbench/pkg/trial"
)

// connectTimeout bounds the reachability probe, not the control commands.
const connectTimeout = 5 * time.Second

// Target identifies the remote side of an SSH-transport benchmark.
type Target struct {
	User string
	Host string
}

// Parse accepts `user@host` or plain `host`.
func Parse(s string) (*Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty SSH target")
	}

	if at := strings.Index(s, "@"); at >= 0 {
		user, host := s[:at], s[at+1:]
		if user == "" || host == "" {
			return nil, fmt.Errorf("invalid SSH target %q, want user@host", s)
		}
		return &Target{User: user, Host: host}, nil
	}

	return &Target{Host: s}, nil
}

// Addr returns the target in the form ssh expects.
func (t *Target) Addr() string {
	if t.User == "" {
		return t.Host
	}
	return t.User + "@" + t.Host
}

// IsLoopback reports whether the target host is the local machine. A
// loopback target keeps full SSH invocation semantics while moving no
// bytes off the machine, which is what the ssh-simulated transport means.
func (t *Target) IsLoopback() bool {
	switch strings.ToLower(t.Host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// Qualify turns a remote filesystem path into the host-qualified form the
// sync tools take as a destination.
func (t *Target) Qualify(path string) string {
	return t.Addr() + ":" + path
}

// Run executes a shell command on the target over ssh.
func (t *Target) Run(command string) error {
	result := trial.Run("ssh", []string{t.Addr(), command}, nil)
	if !result.Success() {
		return fmt.Errorf("ssh %s %q failed: %s", t.Addr(), command, result.ErrText())
	}
	return nil
}

// Check verifies the target is reachable without prompting. BatchMode
// makes a password prompt fail instead of hanging the benchmark.
func (t *Target) Check() error {
	args := []string{
		"-o", "ConnectTimeout=5",
		"-o", "BatchMode=yes",
		t.Addr(),
		"echo ok",
	}
	result := trial.Run("ssh", args, &trial.Options{Timeout: connectTimeout + 5*time.Second})
	if !result.Success() {
		return fmt.Errorf("remote %s not accessible: %s", t.Addr(), result.ErrText())
	}
	return nil
}

// MakeDir creates a directory tree on the target.
func (t *Target) MakeDir(path string) error {
	return t.Run("mkdir -p " + path)
}

// RemoveDir removes a directory tree on the target.
func (t *Target) RemoveDir(path string) error {
	return t.Run("rm -rf " + path)
}
