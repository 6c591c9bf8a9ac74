// Package rtt locates and drains the SEGGER RTT up-channel the target
// agent uses as its log ring buffer.
//
// The target publishes a control block at the address of the
// _SEGGER_RTT anchor symbol; the block's "SEGGER RTT" magic is zero
// until the target's init code runs, so [Locate] retries with a bounded
// budget before giving up. Once located, a [Pump] drains up to a fixed
// slice of new bytes per call, decoding newline-terminated frames and
// forwarding them to the structured logger under
// [github.com/flashkit/rsflash/pkg.ComponentRTT].
package rtt
