//go:build !linux && !darwin

package sysinfo

// cpuModel is not detected on this platform.
func cpuModel() string {
	return ""
}

// osRelease is not detected on this platform.
func osRelease() string {
	return ""
}
