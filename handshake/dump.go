package handshake

import (
	"context"
	"io"
	"time"

	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/rtt"
)

// Dump transfers one chunk target→host per §4.3's Dump sequence:
//
//  1. target fills the buffer and writes control ← 1 (assumed already in
//     flight when Dump is called for this chunk)
//  2. host polls for control == 1
//  3. host reads buffer_size bytes from buffer_addr and writes them to w
//  4. host writes control ← 0
//
// chunk is the 1-based chunk number, used only for error context.
func Dump(ctx context.Context, p probe.Probe, plan Plan, w io.Writer, log *rtt.Pump, timeout time.Duration, chunk int) error {
	deadline := time.Now().Add(timeout)
	if err := poll(ctx, p, plan.ControlAddr, ControlFull, deadline, timeout, log, chunk, false); err != nil {
		return err
	}

	buf := make([]byte, plan.BufferSize)
	if err := p.ReadMemory(ctx, plan.BufferAddr, buf); err != nil {
		return probe.WrapError("read staging buffer", plan.BufferAddr, err)
	}
	if _, err := w.Write(buf); err != nil {
		return &pkg.IoError{Op: "write dump output", Err: err}
	}

	if err := p.WriteMemory32(ctx, plan.ControlAddr, ControlEmpty); err != nil {
		return probe.WrapError("release staging buffer", plan.ControlAddr, err)
	}
	return nil
}
