package handshake

import (
	"context"
	"time"

	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/rtt"
)

// drainBytes bounds how much log data a single poll iteration drains,
// so a chatty target cannot starve control-word polling (§4.4 step 3).
const drainBytes = 1024

// poll busy-waits on the control word at addr until it equals want,
// draining the log pump between reads and checking deadline. Any value
// observed outside {0,1} is a *pkg.ProtocolError (I3); exceeding
// deadline is a *pkg.TimeoutError reporting the configured timeout that
// was in effect.
func poll(ctx context.Context, p probe.Probe, addr uint64, want uint32, deadline time.Time, timeout time.Duration, log *rtt.Pump, chunk int, erase bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		got, err := p.ReadMemory32(ctx, addr)
		if err != nil {
			return probe.WrapError("poll control word", addr, err)
		}
		if got == want {
			return nil
		}
		if got != ControlEmpty && got != ControlFull {
			return &pkg.ProtocolError{Addr: uint32(addr), Got: got}
		}

		if log != nil {
			if err := log.Drain(ctx, drainBytes); err != nil {
				pkg.LogWarn(pkg.ComponentHandshake, "RTT drain failed during poll", "error", err)
			}
		}

		if time.Now().After(deadline) {
			return &pkg.TimeoutError{Chunk: chunk, Erase: erase, Timeout: timeout.String()}
		}
	}
}
