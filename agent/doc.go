// Package agent is the target-resident program (§9 "target agent
// shape"): a TinyGo-buildable, RAM-resident loop that drives the local
// SPI flash chip during a transfer. It is a plain library package;
// the buildable `tinygo build -target <chip>` entry point is
// agent/cmd/agent, which does nothing but call [Run]. Splitting the
// two keeps per-board variation (a different cmd/agent, or a different
// initFlashBus) out of this package. The agent executes entirely from
// RAM, since the external SPI flash being reprogrammed is the same
// device the agent's own code would otherwise live on.
//
// # Linker contract
//
// TinyGo does not expose arbitrary linker scripts the way the original
// firmware toolchain does, so this package approximates §4.2/§6's
// placement requirements with two mechanisms:
//
//   - descriptor is placed in the `.rs-flash` section with a
//     `//go:section` directive (see descriptor.go). TinyGo preserves
//     `//go:section` through its LLVM backend, placing the variable's
//     storage in a section of that exact name in the output ELF.
//   - StagingBuffer and ControlWord are ordinary package-level
//     variables renamed to the host's fixed symbol names
//     (_RS_FLASH_BUFFER, _RS_FLASH_CONTROL) with a `//go:linkname`
//     pragma, the same mechanism the standard library itself uses to
//     publish a chosen symbol name for a variable independent of its Go
//     identifier.
//
// The RTT anchor (_SEGGER_RTT) is provided by whatever RTT logging
// library the target build links (not reproduced here); flash.go only
// documents the contract it must satisfy.
//
// This package is a skeleton: peripheral/clock bring-up and the actual
// SPI flash driver are out of scope (spec §1) and are stubbed with a
// single extension point, initFlashBus.
package agent
