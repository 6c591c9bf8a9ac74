package handshake

import "runtime"

// ControlCell abstracts a single 32-bit memory-mapped cell accessed with
// acquire/release-equivalent ordering, so the target's half of the
// ownership rules in §4.3 can be expressed once and shared between the
// TinyGo-built agent (backed by runtime/volatile.Register32, which
// exposes the same Get/Set shape) and the in-process test double in
// [github.com/flashkit/rsflash/probe/simprobe] (backed by a plain
// synchronized variable). Neither implementation may reorder a Set
// before the buffer write that logically precedes it (I4).
type ControlCell interface {
	Get() uint32
	Set(uint32)
}

// AgentDumpChunk performs the target's half of one Dump chunk (§4.3
// Dump, steps 1-2 and 5): fill buffer from flash at offset, publish it
// by setting ctrl to [ControlFull], then busy-wait for the host to set
// it back to [ControlEmpty] before returning. fill copies exactly
// len(buffer) bytes from the flash-offset'th chunk into buffer.
func AgentDumpChunk(ctrl ControlCell, buffer []byte, fill func([]byte)) {
	fill(buffer)
	ctrl.Set(ControlFull)
	for ctrl.Get() != ControlEmpty {
		runtime.Gosched()
	}
}

// AgentLoadChunk performs the target's half of one Load chunk (§4.3
// Load, steps 3-4): busy-wait for the host to set ctrl to
// [ControlFull], commit the buffer's contents via commit, then set ctrl
// back to [ControlEmpty].
func AgentLoadChunk(ctrl ControlCell, buffer []byte, commit func([]byte)) {
	for ctrl.Get() != ControlFull {
		runtime.Gosched()
	}
	commit(buffer)
	ctrl.Set(ControlEmpty)
}

// RunAgentDump drives chunkCount iterations of [AgentDumpChunk] against
// a flash image already split into chunkCount chunks of len(buffer)
// bytes each, calling fillChunk(k) to stage chunk k into buffer before
// each handoff. It is the target agent's entire steady-state loop for a
// Dump image (§9 "target agent consists of ... an entry point that
// loops for chunk_count chunks").
func RunAgentDump(ctrl ControlCell, buffer []byte, chunkCount uint32, fillChunk func(chunk uint32, dst []byte)) {
	for k := uint32(0); k < chunkCount; k++ {
		chunk := k
		AgentDumpChunk(ctrl, buffer, func(dst []byte) { fillChunk(chunk, dst) })
	}
}

// RunAgentLoad drives chunkCount iterations of [AgentLoadChunk],
// calling commitChunk(k) to program buffer's contents at chunk k into
// flash after each handoff.
func RunAgentLoad(ctrl ControlCell, buffer []byte, chunkCount uint32, commitChunk func(chunk uint32, src []byte)) {
	for k := uint32(0); k < chunkCount; k++ {
		chunk := k
		AgentLoadChunk(ctrl, buffer, func(src []byte) { commitChunk(chunk, src) })
	}
}
