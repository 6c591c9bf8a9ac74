package image

import (
	"encoding/binary"
	"fmt"

	"github.com/flashkit/rsflash/pkg"
)

// SectionName is the fixed section name the target image publishes the
// descriptor in.
const SectionName = ".rs-flash"

// DescriptorSize is the exact size in bytes of the .rs-flash section.
const DescriptorSize = 12

// Descriptor is the target-published transfer parameters: three
// little-endian uint32 words, in order [flash_size, buffer_size,
// direction].
type Descriptor struct {
	FlashSize  uint32
	BufferSize uint32
	Direction  Direction
}

// MarshalTo serializes the descriptor to buf in wire order. Returns the
// number of bytes written (always DescriptorSize) or 0 if buf is too
// small.
func (d *Descriptor) MarshalTo(buf []byte) int {
	if len(buf) < DescriptorSize {
		return 0
	}
	binary.LittleEndian.PutUint32(buf[0:4], d.FlashSize)
	binary.LittleEndian.PutUint32(buf[4:8], d.BufferSize)
	binary.LittleEndian.PutUint32(buf[8:12], d.Direction.Encode())
	return DescriptorSize
}

// ParseDescriptor parses the raw .rs-flash section contents. It enforces
// I1 (buffer_size >= 1 and flash_size an exact multiple of it) and I5
// (direction decodes to Dump or Load).
func ParseDescriptor(data []byte) (*Descriptor, error) {
	if len(data) != DescriptorSize {
		return nil, &pkg.ImageError{
			Op:  "parse .rs-flash section",
			Err: fmt.Errorf("flash table is wrong size"),
		}
	}

	flashSize := binary.LittleEndian.Uint32(data[0:4])
	bufferSize := binary.LittleEndian.Uint32(data[4:8])
	rawDirection := binary.LittleEndian.Uint32(data[8:12])

	direction, err := DecodeDirection(rawDirection)
	if err != nil {
		return nil, err
	}

	if bufferSize == 0 {
		return nil, &pkg.ImageError{
			Op:  "validate .rs-flash section",
			Err: fmt.Errorf("buffer_size must be at least 1"),
		}
	}
	if flashSize == 0 || flashSize%bufferSize != 0 {
		return nil, &pkg.ImageError{
			Op:  "validate .rs-flash section",
			Err: fmt.Errorf("flash_size %d is not an exact multiple of buffer_size %d", flashSize, bufferSize),
		}
	}

	return &Descriptor{
		FlashSize:  flashSize,
		BufferSize: bufferSize,
		Direction:  direction,
	}, nil
}

// ChunkCount returns flash_size / buffer_size, which is guaranteed >= 1 by
// ParseDescriptor's I1 check.
func (d *Descriptor) ChunkCount() uint32 {
	return d.FlashSize / d.BufferSize
}
