//go:build linux

package sequencer

import "golang.org/x/sys/unix"

// pinThread binds the calling OS thread to a single CPU core. The caller
// must hold runtime.LockOSThread for the binding to stick to this
// goroutine
func pinThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
