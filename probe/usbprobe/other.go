//go:build !linux

package usbprobe

import "go.bug.st/serial"

// defaultPort returns a platform-generic fallback; callers on non-Linux
// hosts are expected to pass --probe-serial explicitly.
func defaultPort() string {
	return "/dev/tty.usbmodem0"
}

// configureRaw is a no-op outside Linux; go.bug.st/serial already opens
// the port in a raw-equivalent mode on these platforms.
func configureRaw(port serial.Port) error {
	return nil
}
