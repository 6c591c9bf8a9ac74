//go:build tinygo

package agent

// descriptor publishes flash_size, buffer_size, and direction verbatim
// into the .rs-flash section (§4.2): three little-endian uint32 words.
// Cortex-M and RISC-V targets TinyGo supports for this agent are
// native little-endian, so a plain [3]uint32 array already has the
// wire layout the host's image.ParseDescriptor expects; no manual byte
// packing is needed.
//
//go:section ".rs-flash"
var descriptor = [3]uint32{FlashSizeBytes, BufferSizeBytes, uint32(AgentDirection)}
