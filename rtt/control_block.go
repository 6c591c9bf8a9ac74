package rtt

import (
	"encoding/binary"
)

// Layout of a SEGGER RTT control block: a 16-byte magic ID, two int32
// buffer counts, then that many up-buffer descriptors followed by that
// many down-buffer descriptors. Only the first up-buffer is used here
// (the target's log channel); down-buffers are never read.
const (
	idSize         = 16
	headerSize     = idSize + 4 + 4
	bufferDescSize = 24 // name ptr(4) + buffer ptr(4) + size(4) + wrOff(4) + rdOff(4) + flags(4)
)

var controlBlockID = [idSize]byte{'S', 'E', 'G', 'G', 'E', 'R', ' ', 'R', 'T', 'T'}

// descriptor field offsets, relative to a buffer descriptor's base
// address.
const (
	descNameOffset   = 0
	descBufferOffset = 4
	descSizeOffset   = 8
	descWrOffOffset  = 12
	descRdOffOffset  = 16
)

// ControlBlock is a parsed, located SEGGER RTT control block.
type ControlBlock struct {
	Addr           uint64
	MaxUpBuffers   int32
	MaxDownBuffers int32
}

// UpBufferDescAddr returns the target address of up-buffer descriptor i.
func (c ControlBlock) UpBufferDescAddr(i int) uint64 {
	return c.Addr + headerSize + uint64(i)*bufferDescSize
}

// parseHeader validates the magic ID and decodes the buffer counts from
// a headerSize-byte read starting at the control block's address.
// Returns false if the ID does not yet match (the block is still zeroed
// because the target hasn't run its init code).
func parseHeader(raw []byte) (ControlBlock, bool) {
	if len(raw) < headerSize {
		return ControlBlock{}, false
	}
	for i := 0; i < idSize; i++ {
		if raw[i] != controlBlockID[i] {
			return ControlBlock{}, false
		}
	}
	return ControlBlock{
		MaxUpBuffers:   int32(binary.LittleEndian.Uint32(raw[idSize : idSize+4])),
		MaxDownBuffers: int32(binary.LittleEndian.Uint32(raw[idSize+4 : idSize+8])),
	}, true
}
