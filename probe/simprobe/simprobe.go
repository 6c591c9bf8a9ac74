// Package simprobe is an in-process, RAM-backed [probe.Probe]
// implementation used by every round-trip, boundary, and error-path test
// in this module. Unlike a mock that fakes control-word transitions, it
// runs the real target-agent control loop (shared with the TinyGo build
// via [github.com/flashkit/rsflash/handshake]'s agent-side functions) as
// a goroutine operating on the same simulated memory the host side
// reads and writes through the [probe.Probe] interface. It is the direct
// analogue of the teacher's host/hal/fifo package, which stands in for
// real USB hardware in tests: both hand a host-visible interface to a
// fully in-process peer and let the real protocol logic drive it.
package simprobe

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flashkit/rsflash/handshake"
	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/probe"
)

var _ probe.Probe = (*Probe)(nil)

// rttHeaderSize and rttDescSize mirror rtt's private layout constants;
// duplicated here (rather than imported) because the RTT control block
// is data this package *produces*, not parses -- see rtt/control_block.go.
const (
	rttHeaderSize = 16 + 4 + 4
	rttDescSize   = 24
)

// Config parameterizes one simulated target: the addresses and geometry
// a real descriptor would publish, plus the flash-side backing store the
// agent loop reads from (Dump) or writes into (Load).
type Config struct {
	BufferAddr  uint64
	ControlAddr uint64
	BufferSize  uint32
	ChunkCount  uint32
	Direction   image.Direction

	// Flash is the target's simulated flash contents. For Dump it must
	// be pre-filled with ChunkCount*BufferSize bytes to read back; for
	// Load the caller must allocate it to that length, and the agent
	// loop fills it in as chunks are committed.
	Flash []byte

	// RTTAnchor, if nonzero, causes New to stamp a one-up-buffer
	// SEGGER RTT control block there and log one line per chunk into
	// its ring as the agent loop advances.
	RTTAnchor uint64

	// ChunkDelay, keyed by 0-based chunk index, holds how long the
	// agent loop should sleep before staging (Dump) or committing
	// (Load) that chunk. This simulates a target that is slow to
	// acknowledge a chunk -- a bulk flash erase before the first Load
	// chunk, or a target that never catches up within the host's
	// timeout -- for exercising [github.com/flashkit/rsflash/pkg.TimeoutError]
	// deterministically rather than against real hardware latency.
	ChunkDelay map[uint32]time.Duration
}

// Probe is a simulated debug-probe session backed entirely by an
// in-process byte-addressable memory model.
type Probe struct {
	cfg Config

	mu  sync.Mutex
	mem map[uint64]byte

	ctrl atomic.Uint32

	started atomic.Bool
	halted  atomic.Bool
	done    chan struct{}

	rttWrOff uint32

	// runCtx bounds delayChunk's sleep so a stalled agent goroutine
	// unblocks and exits once the calling test's context is done,
	// rather than outliving the test.
	runCtx context.Context
}

// New returns a Probe ready to Attach.
func New(cfg Config) *Probe {
	p := &Probe{
		cfg:  cfg,
		mem:  make(map[uint64]byte),
		done: make(chan struct{}),
	}
	if cfg.RTTAnchor != 0 {
		p.stampRTT()
	}
	return p
}

// Attach is a no-op; simulated sessions need no connection step.
func (p *Probe) Attach(ctx context.Context, opts probe.Options) error {
	return nil
}

// Detach is a no-op; the simulated session has no external resources.
func (p *Probe) Detach() error { return nil }

// ProgramSegments copies each segment's bytes into simulated memory, as
// a real debug probe would write them into target RAM.
func (p *Probe) ProgramSegments(ctx context.Context, segments []image.Segment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, seg := range segments {
		for i, b := range seg.Data {
			p.mem[seg.Addr+uint64(i)] = b
		}
	}
	return nil
}

// Reset starts the simulated target agent loop. entry is accepted for
// interface conformance but otherwise unused; the agent loop is driven
// directly from cfg rather than by interpreting machine code.
func (p *Probe) Reset(ctx context.Context, entry uint64) error {
	if !p.started.CompareAndSwap(false, true) {
		return fmt.Errorf("simprobe: already started")
	}
	p.ctrl.Store(0)
	p.runCtx = ctx
	go p.runAgent()
	return nil
}

// Halt marks the simulated core halted immediately. Real hardware would
// need a breakpoint; the simulation has no instruction stream to trap.
func (p *Probe) Halt(ctx context.Context) error {
	p.halted.Store(true)
	return nil
}

// Halted reports whether the agent loop has completed all chunks or
// Halt has been called.
func (p *Probe) Halted(ctx context.Context) (bool, error) {
	return p.halted.Load(), nil
}

// ReadMemory32 returns the control word directly from the atomic cell
// when addr is the configured control address, otherwise reads 4 bytes
// from simulated memory.
func (p *Probe) ReadMemory32(ctx context.Context, addr uint64) (uint32, error) {
	if addr == p.cfg.ControlAddr {
		return p.ctrl.Load(), nil
	}
	buf := make([]byte, 4)
	if err := p.ReadMemory(ctx, addr, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// WriteMemory32 writes the control word directly to the atomic cell
// when addr is the configured control address, otherwise writes 4 bytes
// to simulated memory.
func (p *Probe) WriteMemory32(ctx context.Context, addr uint64, value uint32) error {
	if addr == p.cfg.ControlAddr {
		p.ctrl.Store(value)
		return nil
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	return p.WriteMemory(ctx, addr, buf)
}

// ReadMemory copies len(buf) bytes out of simulated memory starting at
// addr. Unwritten cells read as zero.
func (p *Probe) ReadMemory(ctx context.Context, addr uint64, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range buf {
		buf[i] = p.mem[addr+uint64(i)]
	}
	return nil
}

// WriteMemory copies buf into simulated memory starting at addr.
func (p *Probe) WriteMemory(ctx context.Context, addr uint64, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range buf {
		p.mem[addr+uint64(i)] = b
	}
	return nil
}

// CorruptControl forces the control word to an out-of-range value,
// independent of the agent loop, for exercising ProtocolError paths.
func (p *Probe) CorruptControl(value uint32) {
	p.ctrl.Store(value)
}

// delayChunk blocks for cfg.ChunkDelay[chunk], if configured, before the
// agent loop stages or commits that chunk. The wait is bounded by the
// context passed to Reset so a chunk delayed past a test's own deadline
// does not leak the agent goroutine past the test's lifetime.
func (p *Probe) delayChunk(chunk uint32) {
	d, ok := p.cfg.ChunkDelay[chunk]
	if !ok || d <= 0 {
		return
	}
	if p.runCtx == nil {
		time.Sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-p.runCtx.Done():
	}
}

func (p *Probe) runAgent() {
	bufferCell := bufferAccessor{p: p}
	cell := handshake.ControlCell((*atomicCell)(&p.ctrl))

	switch p.cfg.Direction {
	case image.Dump:
		handshake.RunAgentDump(cell, bufferCell.scratch(), p.cfg.ChunkCount, func(chunk uint32, dst []byte) {
			p.delayChunk(chunk)
			off := uint64(chunk) * uint64(p.cfg.BufferSize)
			copy(dst, p.cfg.Flash[off:off+uint64(p.cfg.BufferSize)])
			bufferCell.flushToBuffer(dst)
			p.logChunk(chunk)
		})
	case image.Load:
		handshake.RunAgentLoad(cell, bufferCell.scratch(), p.cfg.ChunkCount, func(chunk uint32, src []byte) {
			p.delayChunk(chunk)
			bufferCell.fillFromBuffer(src)
			off := uint64(chunk) * uint64(p.cfg.BufferSize)
			copy(p.cfg.Flash[off:off+uint64(p.cfg.BufferSize)], src)
			p.logChunk(chunk)
		})
	}

	p.halted.Store(true)
	close(p.done)
}

// Done returns a channel closed when the agent loop has processed all
// configured chunks.
func (p *Probe) Done() <-chan struct{} { return p.done }

// atomicCell adapts *atomic.Uint32 to handshake.ControlCell.
type atomicCell atomic.Uint32

func (c *atomicCell) Get() uint32  { return (*atomic.Uint32)(c).Load() }
func (c *atomicCell) Set(v uint32) { (*atomic.Uint32)(c).Store(v) }

// bufferAccessor moves bytes between a scratch slice (what the agent
// loop's fill/commit callbacks see) and the Probe's simulated memory at
// BufferAddr, mimicking the target touching its own RAM directly while
// the host observes the same bytes through ReadMemory/WriteMemory.
type bufferAccessor struct{ p *Probe }

func (b bufferAccessor) scratch() []byte { return make([]byte, b.p.cfg.BufferSize) }

func (b bufferAccessor) flushToBuffer(data []byte) {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	for i, v := range data {
		b.p.mem[b.p.cfg.BufferAddr+uint64(i)] = v
	}
}

func (b bufferAccessor) fillFromBuffer(dst []byte) {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	for i := range dst {
		dst[i] = b.p.mem[b.p.cfg.BufferAddr+uint64(i)]
	}
}

func (p *Probe) stampRTT() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := [16]byte{'S', 'E', 'G', 'G', 'E', 'R', ' ', 'R', 'T', 'T'}
	hdr := make([]byte, rttHeaderSize)
	copy(hdr, id[:])
	binary.LittleEndian.PutUint32(hdr[16:20], 1) // one up-buffer
	binary.LittleEndian.PutUint32(hdr[20:24], 0) // zero down-buffers
	for i, b := range hdr {
		p.mem[p.cfg.RTTAnchor+uint64(i)] = b
	}

	bufAddr := p.cfg.RTTAnchor + rttHeaderSize + rttDescSize
	const ringSize = 4096
	desc := make([]byte, rttDescSize)
	binary.LittleEndian.PutUint32(desc[4:8], uint32(bufAddr))
	binary.LittleEndian.PutUint32(desc[8:12], ringSize)
	descAddr := p.cfg.RTTAnchor + rttHeaderSize
	for i, b := range desc {
		p.mem[descAddr+uint64(i)] = b
	}
}

// logChunk appends a progress line to the simulated RTT ring so that
// host-side log pumping during polls can be exercised end to end.
func (p *Probe) logChunk(chunk uint32) {
	if p.cfg.RTTAnchor == 0 {
		return
	}
	line := fmt.Sprintf("chunk %d/%d\n", chunk+1, p.cfg.ChunkCount)

	p.mu.Lock()
	defer p.mu.Unlock()

	descAddr := p.cfg.RTTAnchor + rttHeaderSize
	bufAddrRaw := make([]byte, 4)
	for i := range bufAddrRaw {
		bufAddrRaw[i] = p.mem[descAddr+4+uint64(i)]
	}
	bufAddr := uint64(binary.LittleEndian.Uint32(bufAddrRaw))
	sizeRaw := make([]byte, 4)
	for i := range sizeRaw {
		sizeRaw[i] = p.mem[descAddr+8+uint64(i)]
	}
	size := binary.LittleEndian.Uint32(sizeRaw)

	for _, c := range []byte(line) {
		p.mem[bufAddr+uint64(p.rttWrOff)] = c
		p.rttWrOff = (p.rttWrOff + 1) % size
	}
	wrRaw := make([]byte, 4)
	binary.LittleEndian.PutUint32(wrRaw, p.rttWrOff)
	for i, b := range wrRaw {
		p.mem[descAddr+12+uint64(i)] = b
	}
}
