// Package probe defines the Hardware Abstraction Layer between the host
// driver and a debug probe session: core control (attach, reset and
// start, halt, halted) and target RAM access (read/write). RTT control-block
// discovery is built on top of plain memory reads by
// [github.com/flashkit/rsflash/rtt.Locate], so no backend-specific
// support is needed here.
//
// # Design Principles
//
// The probe interface is designed to be:
//   - Minimal: only the operations the handshake and bring-up packages
//     need, nothing a specific probe vendor's SDK happens to expose.
//   - Generic: no assumptions about which debug adapter or chip family
//     is in use.
//   - Flexible: a probe backend and a fully in-process simulation both
//     satisfy the same interface.
//
// # Implementations
//
// [github.com/flashkit/rsflash/probe/simprobe] is an in-process,
// RAM-backed [Probe] used by every round-trip and boundary test in this
// module; it runs the real target control loop as a goroutine rather
// than faking memory transitions. [github.com/flashkit/rsflash/probe/usbprobe]
// talks to a real debug probe exposing a CDC-ACM control channel.
//
// # Implementing a Probe
//
//  1. Create a type that implements all [Probe] methods.
//  2. Handle session-specific setup in Attach.
//  3. Implement ReadMemory32/WriteMemory32 as single, word-aligned
//     accesses with sequentially-consistent ordering (§5 of the
//     protocol this module implements depends on it).
//  4. Implement Halted so that halt detection can require two
//     consecutive positive observations.
package probe
