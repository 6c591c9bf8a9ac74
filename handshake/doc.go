// Package handshake implements the single-word rendezvous protocol that
// serializes chunk transfers between the host and the target agent: who
// may touch the staging buffer, when the control word may change, and
// what a poll does while it waits.
//
// [Plan] derives the chunk geometry from a parsed descriptor. [Dump] and
// [Load] drive the two five-step handoff sequences described by the
// protocol, one chunk at a time, over a [github.com/flashkit/rsflash/probe.Probe].
// agentside.go factors the target's half of the same ownership rules
// into plain functions so that both the TinyGo-built agent and the
// in-process test double in [github.com/flashkit/rsflash/probe/simprobe]
// execute identical logic rather than two hand-maintained copies.
package handshake
