package image

import (
	"fmt"

	"github.com/flashkit/rsflash/pkg"
)

// Direction indicates which way bytes flow between host and target.
type Direction uint32

// Direction wire values. Part of the host/target ABI; must not change.
const (
	Dump Direction = 1 // target -> host
	Load Direction = 2 // host -> target
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Dump:
		return "dump"
	case Load:
		return "load"
	default:
		return fmt.Sprintf("invalid(0x%08x)", uint32(d))
	}
}

// Encode returns the wire value for d. Encoding is total: every Direction
// value produced by this package round-trips through Decode.
func (d Direction) Encode() uint32 {
	return uint32(d)
}

// DecodeDirection decodes a wire value into a Direction. Any value other
// than 1 (Dump) or 2 (Load) is a protocol violation and is reported as an
// *pkg.ImageError carrying the offending value.
func DecodeDirection(v uint32) (Direction, error) {
	switch Direction(v) {
	case Dump, Load:
		return Direction(v), nil
	default:
		return 0, &pkg.ImageError{
			Op:  "decode direction",
			Err: fmt.Errorf("invalid flash table direction 0x%08x", v),
		}
	}
}
