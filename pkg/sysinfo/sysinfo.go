// Package sysinfo collects the host descriptor recorded with every
// benchmark run. Results from different machines are never comparable;
// the descriptor is what lets the history say so.
package sysinfo

import (
	"os"
	"runtime"
)

// HostNameLimit caps the persisted hostname length.
const HostNameLimit = 16

// Info describes the machine a run executed on.
type Info struct {
	OS        string `json:"os"`
	OSVersion string `json:"os_version"`
	Arch      string `json:"arch"`
	Host      string `json:"host"`
	Cores     int    `json:"cores"`
	CPU       string `json:"cpu,omitempty"`
	GoVersion string `json:"go"`
}

// Collect gathers the descriptor for the current host. Every field is
// best-effort; a field that cannot be determined is left empty rather
// than failing the run.
func Collect() Info {
	host, _ := os.Hostname()
	if len(host) > HostNameLimit {
		host = host[:HostNameLimit]
	}

	return Info{
		OS:        runtime.GOOS,
		OSVersion: osRelease(),
		Arch:      runtime.GOARCH,
		Host:      host,
		Cores:     runtime.NumCPU(),
		CPU:       cpuModel(),
		GoVersion: runtime.Version(),
	}
}
