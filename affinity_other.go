//go:build !linux

package sequencer

import "errors"

// pinThread reports that thread pinning is unavailable on this platform;
// consumers log the failure and continue unpinned
func pinThread(int) error {
	return errors.New("cpu pinning is only supported on linux")
}
