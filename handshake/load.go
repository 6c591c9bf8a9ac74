package handshake

import (
	"context"
	"io"
	"time"

	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/rtt"
)

// Load transfers one chunk host→target per §4.3's Load sequence:
//
//  1. host reads buffer_size bytes from r (a short read is fatal, §7 IoError)
//  2. host writes them to buffer_addr
//  3. host writes control ← 1
//  4. host polls for control == 0 (target has programmed the chunk and
//     released the buffer)
//
// chunk is the 1-based chunk number, used only for error context. erase
// marks this as the one-shot first-chunk wait that uses the extended
// erase timeout rather than the steady-state timeout (§4.4).
func Load(ctx context.Context, p probe.Probe, plan Plan, r io.Reader, log *rtt.Pump, timeout time.Duration, chunk int, erase bool) error {
	buf := make([]byte, plan.BufferSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return &pkg.IoError{Op: "read load input", Err: err}
	}

	if err := p.WriteMemory(ctx, plan.BufferAddr, buf); err != nil {
		return probe.WrapError("fill staging buffer", plan.BufferAddr, err)
	}
	if err := p.WriteMemory32(ctx, plan.ControlAddr, ControlFull); err != nil {
		return probe.WrapError("hand off staging buffer", plan.ControlAddr, err)
	}

	deadline := time.Now().Add(timeout)
	return poll(ctx, p, plan.ControlAddr, ControlEmpty, deadline, timeout, log, chunk, erase)
}
