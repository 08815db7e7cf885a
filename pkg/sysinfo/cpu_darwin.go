//go:build darwin

package sysinfo

import "golang.org/x/sys/unix"

// cpuModel returns the CPU brand string via sysctl.
func cpuModel() string {
	model, err := unix.Sysctl("machdep.cpu.brand_string")
	if err != nil {
		return ""
	}
	return model
}

// osRelease returns the kernel release via uname.
func osRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
