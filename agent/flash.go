//go:build tinygo

package agent

// initFlashBus brings up whatever peripheral the target's SPI flash
// chip is wired to (clock tree, GPIO alternate functions, the SPI
// controller itself) and returns a bus ready for readAt/programAt.
// Left unimplemented: peripheral bring-up and the flash chip's command
// set are board-specific and out of scope (spec §1 Non-goals).
func initFlashBus() flashBus {
	panic("agent: initFlashBus not implemented for this board")
}

// flashBus is the extension point a concrete board package must
// satisfy to make run usable. readAt/programAt operate on whole
// buffer-sized chunks at a time, matching the handoff granularity
// RunAgentDump/RunAgentLoad already drive.
type flashBus interface {
	readAt(chunk uint32, dst []byte)
	programAt(chunk uint32, src []byte)
	eraseAll()
}
