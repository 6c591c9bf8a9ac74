//go:build linux

package usbprobe

import (
	"fmt"

	"golang.org/x/sys/unix"
	"go.bug.st/serial"
)

// defaultPort returns the conventional CDC-ACM device node for a debug
// probe's control channel when --probe-serial is not given.
func defaultPort() string {
	return "/dev/ttyACM0"
}

// configureRaw puts the underlying file descriptor into raw mode via
// termios, mirroring the teacher's host/hal/linux package's use of
// golang.org/x/sys/unix for direct ioctl control of a USB character
// device -- adapted here from a USB host controller driver to a single
// serial line discipline.
func configureRaw(port serial.Port) error {
	f, ok := port.(interface{ Fd() uintptr })
	if !ok {
		// Not all serial.Port backends (and none of the pure-Go ones
		// used in tests) expose a file descriptor; raw mode is then
		// the library's own default and nothing further is needed.
		return nil
	}
	fd := int(f.Fd())

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	t.Iflag &^= unix.IXON | unix.IXOFF | unix.ICRNL
	t.Oflag &^= unix.OPOST
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	return nil
}
