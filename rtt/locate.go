package rtt

import (
	"context"
	"fmt"
	"time"

	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
)

// DefaultRetries and DefaultInterval bound how long Locate waits for the
// target's init code to stamp the control block's magic ID after reset.
const (
	DefaultRetries  = 20
	DefaultInterval = 50 * time.Millisecond
)

// Locate polls anchor until it holds a valid RTT control block ID or
// the retry budget is exhausted. anchor is the address of the
// _SEGGER_RTT symbol, which the target's startup code overwrites with
// the real control block shortly after reset.
func Locate(ctx context.Context, p probe.Probe, anchor uint64, retries int, interval time.Duration) (ControlBlock, error) {
	var last error
	for attempt := 0; attempt < retries; attempt++ {
		raw := make([]byte, headerSize)
		if err := p.ReadMemory(ctx, anchor, raw); err != nil {
			last = err
		} else if cb, ok := parseHeader(raw); ok {
			cb.Addr = anchor
			pkg.LogDebug(pkg.ComponentRTT, "located RTT control block", "addr", fmt.Sprintf("0x%08x", anchor), "attempt", attempt+1)
			return cb, nil
		}

		select {
		case <-ctx.Done():
			return ControlBlock{}, ctx.Err()
		case <-time.After(interval):
		}
	}

	err := fmt.Errorf("RTT control block not found at 0x%08x after %d attempts", anchor, retries)
	if last != nil {
		err = fmt.Errorf("%w (last read error: %v)", err, last)
	}
	return ControlBlock{}, &pkg.ProbeError{Op: "locate RTT control block", Addr: uint32(anchor), Err: err}
}
