package bench

import (
	"time"

	"github.com/dsync-tools/syncbench/pkg/gitinfo"
	"github.com/dsync-tools/syncbench/pkg/sysinfo"
)

// Transport modes recorded with a run. ssh-simulated means an SSH target
// on a loopback host: real SSH invocation semantics, no network transfer.
const (
	TransportLocal        = "local"
	TransportSSH          = "ssh"
	TransportSSHSimulated = "ssh-simulated"
)

// TimestampFormat is the layout of Run.Timestamp, always in UTC.
const TimestampFormat = "2006-01-02 15:04:05"

// Run is one complete benchmark invocation: every measurement from every
// scenario, plus enough context to interpret them later. Once persisted a
// run is immutable.
type Run struct {
	Timestamp string            `json:"ts"`
	System    sysinfo.Info      `json:"sys"`
	Git       gitinfo.Info      `json:"git"`
	Versions  map[string]string `json:"ver"`
	Transport string            `json:"transport"`
	Results   []Measurement     `json:"results"`
	Notes     string            `json:"notes,omitempty"`
}

// Now returns the current time formatted for Run.Timestamp.
func Now() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// Rounded returns a copy of the run with persisted precision applied to
// every measurement.
func (r Run) Rounded() Run {
	results := make([]Measurement, len(r.Results))
	for i, m := range r.Results {
		results[i] = m.Round()
	}
	r.Results = results
	return r
}
