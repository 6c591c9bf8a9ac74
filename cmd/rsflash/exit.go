package main

import "github.com/flashkit/rsflash/pkg"

// Exit codes, one per error-kind bucket from pkg/error.go, generalizing
// the teacher's TransferStatus-to-exit-code dispatch from a status enum
// to a type switch over the returned error.
const (
	exitOK = iota
	exitUsage
	exitImage
	exitIO
	exitProbe
	exitTimeout
	exitProtocol
	exitUnknown
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch err.(type) {
	case *pkg.UsageError:
		return exitUsage
	case *pkg.ImageError:
		return exitImage
	case *pkg.IoError:
		return exitIO
	case *pkg.ProbeError:
		return exitProbe
	case *pkg.TimeoutError:
		return exitTimeout
	case *pkg.ProtocolError:
		return exitProtocol
	default:
		return exitUnknown
	}
}
