// Package transfer drives the host's per-chunk transfer loop (§4.4):
// iterating chunks until the plan's flash_size has moved, applying the
// steady-state timeout and the one-shot Load-mode erase timeout, and
// logging progress.
package transfer

import (
	"context"
	"io"
	"time"

	"github.com/flashkit/rsflash/handshake"
	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/rtt"
)

// Config bundles everything one call to Run needs: the plan, the open
// file the host streams chunks to/from, the probe session, the RTT log
// pump (nil disables log draining during polls), and the two timeouts
// from §4.4.
type Config struct {
	Plan          handshake.Plan
	Probe         probe.Probe
	Log           *rtt.Pump
	Timeout       time.Duration // steady-state per-chunk timeout (bringup defaults it to 10s; Run applies no default)
	EraseTimeout  time.Duration // one-shot first Load-chunk timeout (bringup defaults it to 5m; Run applies no default)
	DumpWriter    io.Writer     // required when Plan.Direction == image.Dump
	LoadReader    io.Reader     // required when Plan.Direction == image.Load
}

// Run drives handshake.Dump or handshake.Load once per chunk until the
// plan's FlashSize bytes have moved, logging "chunk/chunk_count at
// count" progress before each chunk (§4.4 step 1).
func Run(ctx context.Context, cfg Config) error {
	cursor := handshake.Cursor{}

	for !cursor.Done(cfg.Plan) {
		chunk := cursor.Chunk(cfg.Plan)
		pkg.LogInfo(pkg.ComponentTransfer, "transferring chunk",
			"chunk", chunk, "chunk_count", cfg.Plan.ChunkCount, "count", cursor.Count)

		switch cfg.Plan.Direction {
		case image.Dump:
			if err := handshake.Dump(ctx, cfg.Probe, cfg.Plan, cfg.DumpWriter, cfg.Log, cfg.Timeout, int(chunk)); err != nil {
				return err
			}
		case image.Load:
			erase := cursor.Count == 0
			timeout := cfg.Timeout
			if erase {
				timeout = cfg.EraseTimeout
			}
			if err := handshake.Load(ctx, cfg.Probe, cfg.Plan, cfg.LoadReader, cfg.Log, timeout, int(chunk), erase); err != nil {
				return err
			}
		}

		cursor.Advance(cfg.Plan)
	}

	return nil
}
