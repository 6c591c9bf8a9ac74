package main

import (
	"errors"
	"testing"

	"github.com/flashkit/rsflash/pkg"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"usage", &pkg.UsageError{Op: "x", Err: errors.New("bad")}, exitUsage},
		{"image", &pkg.ImageError{Op: "x", Err: errors.New("bad")}, exitImage},
		{"io", &pkg.IoError{Op: "x", Err: errors.New("bad")}, exitIO},
		{"probe", &pkg.ProbeError{Op: "x", Err: errors.New("bad")}, exitProbe},
		{"timeout", &pkg.TimeoutError{Chunk: 1, Timeout: "1s"}, exitTimeout},
		{"protocol", &pkg.ProtocolError{Addr: 0, Got: 2}, exitProtocol},
		{"unknown", errors.New("plain"), exitUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := exitCode(c.err); got != c.want {
				t.Errorf("exitCode(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}
