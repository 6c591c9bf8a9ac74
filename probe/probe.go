package probe

import (
	"context"

	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/pkg"
)

// Options selects and configures a debug probe session. Fields left zero
// take backend-specific defaults.
type Options struct {
	Chip       string // chip identifier, resolved via chipdb
	Serial     string // probe serial number or transport path, if ambiguous
	Speed      uint32 // probe interface clock, Hz; 0 means backend default
}

// Probe is the narrow set of operations the handshake, transfer, and
// bring-up packages need from a debug probe session: attach/detach,
// core control, and word- and byte-addressed target RAM access. RTT
// control-block discovery is not part of it; rtt.Locate builds that on
// plain memory reads. All methods must be safe to call from a single goroutine;
// Probe implementations are not required to support concurrent use.
type Probe interface {
	// Attach opens the probe session and connects to the target core
	// described by opts. The context bounds connection time only.
	Attach(ctx context.Context, opts Options) error

	// Detach releases the probe session. After Detach returns, the
	// Probe must not be used again.
	Detach() error

	// ProgramSegments writes each loadable segment to target RAM at its
	// declared address.
	ProgramSegments(ctx context.Context, segments []image.Segment) error

	// Reset installs entry as the reset vector's initial program
	// counter, resets the core, and starts execution from entry.
	Reset(ctx context.Context, entry uint64) error

	// Halt requests the core stop executing.
	Halt(ctx context.Context) error

	// Halted reports whether the core is currently halted at a
	// breakpoint. Callers must sample this twice consecutively before
	// treating a halt as final (a single reading can race the
	// breakpoint's retirement).
	Halted(ctx context.Context) (bool, error)

	// ReadMemory32 performs one word-aligned 32-bit read at addr.
	ReadMemory32(ctx context.Context, addr uint64) (uint32, error)

	// WriteMemory32 performs one word-aligned 32-bit write at addr.
	WriteMemory32(ctx context.Context, addr uint64, value uint32) error

	// ReadMemory reads len(buf) bytes from target RAM starting at addr.
	ReadMemory(ctx context.Context, addr uint64, buf []byte) error

	// WriteMemory writes buf to target RAM starting at addr.
	WriteMemory(ctx context.Context, addr uint64, buf []byte) error
}

// probeError wraps err as a *pkg.ProbeError with the given operation
// name and optional address. Backend implementations use this to keep
// their error shapes consistent with the taxonomy the rest of the
// module relies on.
func probeError(op string, addr uint64, err error) error {
	return &pkg.ProbeError{Op: op, Addr: uint32(addr), Err: err}
}

// WrapError is the exported form of probeError, for use by probe
// backend packages outside this package.
func WrapError(op string, addr uint64, err error) error {
	return probeError(op, addr, err)
}
