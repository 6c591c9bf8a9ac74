//go:build tinygo

package agent

import "github.com/flashkit/rsflash/image"

// These three constants are what a real deployment edits per board and
// per flash chip; they become the published descriptor (§4.2) and size
// the staging buffer. The values here describe a 16 MiB chip staged 4
// KiB at a time, configured to Load (host -> target programs flash).
const (
	FlashSizeBytes  = 16 * 1024 * 1024
	BufferSizeBytes = 4096
	AgentDirection  = image.Load
)

// This assignment only compiles when FlashSizeBytes is an exact multiple
// of BufferSizeBytes (I1): a mismatched array length is a compile-time
// error, the "target panics at compile time" spec §3 I1 calls for.
var _ [0]byte = [FlashSizeBytes % BufferSizeBytes]byte{}

// ChunkCount is flash_size / buffer_size, matching image.Descriptor.ChunkCount.
const ChunkCount = FlashSizeBytes / BufferSizeBytes
