package rtt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
)

var errNoUpBuffers = errors.New("target published zero RTT up-buffers")

// Pump drains the target's first RTT up-buffer (its log channel) in
// bounded slices, decodes newline-terminated frames, and forwards them
// to the structured logger.
type Pump struct {
	p          probe.Probe
	descAddr   uint64
	bufferAddr uint64
	size       uint32
	rdOff      uint32
	pending    []byte // bytes read but not yet newline-terminated
}

// NewPump reads the first up-buffer's descriptor out of cb and returns a
// Pump ready to drain it.
func NewPump(ctx context.Context, p probe.Probe, cb ControlBlock) (*Pump, error) {
	if cb.MaxUpBuffers < 1 {
		return nil, &pkg.ProbeError{Op: "open RTT up-channel", Addr: uint32(cb.Addr), Err: errNoUpBuffers}
	}
	descAddr := cb.UpBufferDescAddr(0)
	raw := make([]byte, bufferDescSize)
	if err := p.ReadMemory(ctx, descAddr, raw); err != nil {
		return nil, probe.WrapError("read RTT up-buffer descriptor", descAddr, err)
	}
	bufferAddr := uint64(binary.LittleEndian.Uint32(raw[descBufferOffset : descBufferOffset+4]))
	size := binary.LittleEndian.Uint32(raw[descSizeOffset : descSizeOffset+4])
	rdOff := binary.LittleEndian.Uint32(raw[descRdOffOffset : descRdOffOffset+4])

	return &Pump{
		p:          p,
		descAddr:   descAddr,
		bufferAddr: bufferAddr,
		size:       size,
		rdOff:      rdOff,
	}, nil
}

// Drain reads up to maxBytes of newly-written log data, logs complete
// lines, and advances the host's and target's read offsets. It is
// designed to be called once per handshake poll iteration (§4.4 step 3)
// so a chatty target cannot starve control-word polling.
func (pu *Pump) Drain(ctx context.Context, maxBytes int) error {
	wrRaw := make([]byte, 4)
	if err := pu.p.ReadMemory(ctx, pu.descAddr+descWrOffOffset, wrRaw); err != nil {
		return probe.WrapError("read RTT write offset", pu.descAddr, err)
	}
	wrOff := binary.LittleEndian.Uint32(wrRaw)

	available := int(wrOff) - int(pu.rdOff)
	if available < 0 {
		available += int(pu.size)
	}
	if available == 0 {
		return nil
	}
	if available > maxBytes {
		available = maxBytes
	}

	chunk := make([]byte, available)
	tail := pu.size - pu.rdOff
	if uint32(available) <= tail {
		if err := pu.p.ReadMemory(ctx, pu.bufferAddr+uint64(pu.rdOff), chunk); err != nil {
			return probe.WrapError("read RTT buffer", pu.bufferAddr, err)
		}
	} else {
		if err := pu.p.ReadMemory(ctx, pu.bufferAddr+uint64(pu.rdOff), chunk[:tail]); err != nil {
			return probe.WrapError("read RTT buffer", pu.bufferAddr, err)
		}
		if err := pu.p.ReadMemory(ctx, pu.bufferAddr, chunk[tail:]); err != nil {
			return probe.WrapError("read RTT buffer", pu.bufferAddr, err)
		}
	}

	pu.rdOff = (pu.rdOff + uint32(available)) % pu.size
	rdRaw := make([]byte, 4)
	binary.LittleEndian.PutUint32(rdRaw, pu.rdOff)
	if err := pu.p.WriteMemory(ctx, pu.descAddr+descRdOffOffset, rdRaw); err != nil {
		return probe.WrapError("advance RTT read offset", pu.descAddr, err)
	}

	pu.pending = append(pu.pending, chunk...)
	pu.emitLines()
	return nil
}

func (pu *Pump) emitLines() {
	for {
		i := bytes.IndexByte(pu.pending, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimRight(string(pu.pending[:i]), "\r")
		pu.pending = pu.pending[i+1:]
		if line != "" {
			pkg.LogInfo(pkg.ComponentRTT, line)
		}
	}
}
