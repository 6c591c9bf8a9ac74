//go:build tinygo

package agent

import (
	"github.com/flashkit/rsflash/handshake"
	"github.com/flashkit/rsflash/image"
)

// rttAnchor is resolved by the RTT library the board build links; it
// must live at the fixed address the host locates via Image.RTTAddr
// (image.SymbolRTT). Declared here only so run has something to
// reference once a real RTT library is wired in; logging calls
// themselves go through that library, not through this package.
var rttAnchor uintptr

// Run is the target agent's entire steady-state program (§9): bring up
// the flash bus, then hand chunkCount buffer-sized chunks to the host
// in the configured Direction. It never returns under normal operation;
// the host detects completion by observing two consecutive Halted
// polls once its own chunk count is exhausted. Called from the board's
// package main (see cmd/agent), not a main in this package, so that
// this package stays a plain importable library rather than requiring
// every board variant to fork agent/ itself.
func Run() {
	bus := initFlashBus()
	ctrl := control()
	buf := buffer()

	switch AgentDirection {
	case image.Dump:
		handshake.RunAgentDump(ctrl, buf, ChunkCount, func(chunk uint32, dst []byte) {
			bus.readAt(chunk, dst)
		})
	case image.Load:
		handshake.RunAgentLoad(ctrl, buf, ChunkCount, func(chunk uint32, src []byte) {
			if chunk == 0 {
				bus.eraseAll()
			}
			bus.programAt(chunk, src)
		})
	}
}
