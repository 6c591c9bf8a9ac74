package handshake

import (
	"fmt"

	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/pkg"
)

// Control word values. The cell holds nothing else; any other value
// observed at a poll is a protocol violation (I3).
const (
	ControlEmpty uint32 = 0
	ControlFull  uint32 = 1
)

// Plan is the host-side derived view of a transfer: geometry plus the
// two fixed target addresses the handshake touches every chunk.
type Plan struct {
	FlashSize   uint32
	BufferSize  uint32
	ChunkCount  uint32
	Direction   image.Direction
	BufferAddr  uint64
	ControlAddr uint64
}

// NewPlan derives a Plan from a parsed image. It re-checks I1
// defensively even though image.ParseDescriptor already enforces it.
func NewPlan(img *image.Image) (Plan, error) {
	d := img.Descriptor
	if d.BufferSize == 0 || d.FlashSize%d.BufferSize != 0 {
		return Plan{}, &pkg.ImageError{
			Op:  "derive transfer plan",
			Err: fmt.Errorf("flash_size %d is not an exact multiple of buffer_size %d", d.FlashSize, d.BufferSize),
		}
	}
	return Plan{
		FlashSize:   d.FlashSize,
		BufferSize:  d.BufferSize,
		ChunkCount:  d.ChunkCount(),
		Direction:   d.Direction,
		BufferAddr:  img.BufferAddr,
		ControlAddr: img.ControlAddr,
	}, nil
}

// Cursor tracks host-side transfer progress: bytes moved so far
// (Count) and the number of chunks completed so far (CurrentChunk,
// starting at 0). The 1-based number of the chunk in flight is
// returned by [Cursor.Chunk].
type Cursor struct {
	Count        uint32
	CurrentChunk uint32
}

// Done reports whether the plan's full flash_size has been transferred.
func (c Cursor) Done(p Plan) bool {
	return c.Count >= p.FlashSize
}

// Advance records one completed chunk of p.BufferSize bytes.
func (c *Cursor) Advance(p Plan) {
	c.Count += p.BufferSize
	c.CurrentChunk++
}

// Chunk returns the 1-based chunk number that the next transfer will
// perform, per §4.4 step 1 (count / buffer_size + 1).
func (c Cursor) Chunk(p Plan) uint32 {
	return c.Count/p.BufferSize + 1
}
