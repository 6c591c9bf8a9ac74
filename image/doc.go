// Package image parses the target ELF that a flash transfer runs against.
//
// It decodes the two pieces of the host/target contract that live inside
// the image itself: the direction codec (Dump vs Load, see [Direction])
// and the 12-byte [Descriptor] published in the target's .rs-flash
// section. [Load] wraps [debug/elf] to resolve the descriptor and the
// three fixed symbols (_SEGGER_RTT, _RS_FLASH_BUFFER, _RS_FLASH_CONTROL)
// that the host needs before it can program and run the agent.
package image
