//go:build tinygo

package agent

import (
	"runtime/volatile"
	"unsafe"
)

// stagingBuffer and controlWord are the two memory locations the host
// reads and writes by fixed address, resolved through the symbols
// below. They are renamed to their published names with go:linkname so
// the host's debug/elf-based symbol lookup in
// github.com/flashkit/rsflash/image finds exactly _RS_FLASH_BUFFER and
// _RS_FLASH_CONTROL (§6).
//go:linkname stagingBuffer _RS_FLASH_BUFFER
var stagingBuffer [BufferSizeBytes]byte

//go:linkname controlWord _RS_FLASH_CONTROL
var controlWord volatile.Register32

// control adapts controlWord to handshake.ControlCell; volatile.Register32
// already exposes Get/Set with the ordering §4.3 requires (each access
// compiles to a single load/store instruction, never reordered past a
// neighboring volatile access).
func control() *volatile.Register32 { return &controlWord }

// buffer returns the staging buffer as a plain slice for the handshake
// package's fill/commit callbacks.
func buffer() []byte {
	return unsafe.Slice(&stagingBuffer[0], len(stagingBuffer))
}
