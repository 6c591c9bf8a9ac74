// Package usbprobe implements [probe.Probe] against a real debug probe
// that exposes a CDC-ACM control channel: a USB-serial endpoint carrying
// a small line-oriented command protocol for core control and
// word/block memory access. It is the non-simulated counterpart to
// [github.com/flashkit/rsflash/probe/simprobe].
//
// Port opening uses go.bug.st/serial, the same library
// mbrukner-FoenixMgrGo uses for its firmware-flashing serial transport;
// low-level line discipline (raw mode, non-canonical reads) on Linux
// uses golang.org/x/sys/unix the way the teacher's host/hal/linux
// package configures its usbfs/sysfs descriptors, adapted here to a
// single termios call instead of a USB host controller driver.
package usbprobe

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
)

var _ probe.Probe = (*Probe)(nil)

// Probe drives a debug probe over a serial control channel, one command
// at a time, matching §5's "host is single-threaded and strictly
// serial" model -- there is no request pipelining.
type Probe struct {
	mu   sync.Mutex
	port serial.Port
	r    *bufio.Reader
}

// New returns a Probe that has not yet attached to a port.
func New() *Probe { return &Probe{} }

// Attach opens the serial device named by opts.Serial (or the backend
// default port if empty) at opts.Speed baud (or 115200 if zero) and
// confirms the probe answers a version query.
func (p *Probe) Attach(ctx context.Context, opts probe.Options) error {
	path := opts.Serial
	if path == "" {
		path = defaultPort()
	}
	baud := int(opts.Speed)
	if baud == 0 {
		baud = 115200
	}

	mode := &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	port, err := serial.Open(path, mode)
	if err != nil {
		return &pkg.ProbeError{Op: "attach probe", Err: fmt.Errorf("open %s: %w", path, err)}
	}
	if err := configureRaw(port); err != nil {
		port.Close()
		return &pkg.ProbeError{Op: "attach probe", Err: err}
	}

	p.mu.Lock()
	p.port = port
	p.r = bufio.NewReader(port)
	p.mu.Unlock()

	if _, err := p.command(ctx, "ping"); err != nil {
		p.Detach()
		return &pkg.ProbeError{Op: "attach probe", Err: err}
	}
	pkg.LogInfo(pkg.ComponentProbe, "attached to probe", "port", path, "baud", baud)
	return nil
}

// Detach closes the serial port.
func (p *Probe) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// ProgramSegments writes each loadable segment with a sequence of
// wrmem commands.
func (p *Probe) ProgramSegments(ctx context.Context, segments []image.Segment) error {
	for _, seg := range segments {
		if err := p.WriteMemory(ctx, seg.Addr, seg.Data); err != nil {
			return probe.WrapError("program segment", seg.Addr, err)
		}
	}
	return nil
}

// Reset installs entry as the reset vector and restarts the core.
func (p *Probe) Reset(ctx context.Context, entry uint64) error {
	_, err := p.command(ctx, fmt.Sprintf("reset %x", entry))
	if err != nil {
		return probe.WrapError("reset core", entry, err)
	}
	return nil
}

// Halt requests the core stop executing.
func (p *Probe) Halt(ctx context.Context) error {
	_, err := p.command(ctx, "halt")
	if err != nil {
		return probe.WrapError("halt core", 0, err)
	}
	return nil
}

// Halted reports whether the core is currently halted.
func (p *Probe) Halted(ctx context.Context) (bool, error) {
	resp, err := p.command(ctx, "halted")
	if err != nil {
		return false, probe.WrapError("query halted state", 0, err)
	}
	return strings.TrimSpace(resp) == "1", nil
}

// ReadMemory32 performs one word-aligned 32-bit read at addr.
func (p *Probe) ReadMemory32(ctx context.Context, addr uint64) (uint32, error) {
	resp, err := p.command(ctx, fmt.Sprintf("rd32 %x", addr))
	if err != nil {
		return 0, probe.WrapError("read memory32", addr, err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(resp), 16, 32)
	if err != nil {
		return 0, probe.WrapError("read memory32", addr, fmt.Errorf("malformed reply %q: %w", resp, err))
	}
	return uint32(v), nil
}

// WriteMemory32 performs one word-aligned 32-bit write at addr.
func (p *Probe) WriteMemory32(ctx context.Context, addr uint64, value uint32) error {
	if _, err := p.command(ctx, fmt.Sprintf("wr32 %x %x", addr, value)); err != nil {
		return probe.WrapError("write memory32", addr, err)
	}
	return nil
}

// ReadMemory reads len(buf) bytes from addr, encoded as hex over the
// control channel.
func (p *Probe) ReadMemory(ctx context.Context, addr uint64, buf []byte) error {
	resp, err := p.command(ctx, fmt.Sprintf("rdmem %x %x", addr, len(buf)))
	if err != nil {
		return probe.WrapError("read memory", addr, err)
	}
	resp = strings.TrimSpace(resp)
	if len(resp) != 2*len(buf) {
		return probe.WrapError("read memory", addr, fmt.Errorf("expected %d hex bytes, got %d", len(buf), len(resp)/2))
	}
	for i := range buf {
		v, err := strconv.ParseUint(resp[i*2:i*2+2], 16, 8)
		if err != nil {
			return probe.WrapError("read memory", addr, err)
		}
		buf[i] = byte(v)
	}
	return nil
}

// WriteMemory writes buf to addr, encoded as hex over the control
// channel.
func (p *Probe) WriteMemory(ctx context.Context, addr uint64, buf []byte) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "wrmem %x ", addr)
	for _, b := range buf {
		fmt.Fprintf(&sb, "%02x", b)
	}
	if _, err := p.command(ctx, sb.String()); err != nil {
		return probe.WrapError("write memory", addr, err)
	}
	return nil
}

// command writes a single line to the probe and reads one line of
// reply, bounding the round trip to ctx's deadline if any.
func (p *Probe) command(ctx context.Context, line string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return "", fmt.Errorf("not attached")
	}
	if dl, ok := ctx.Deadline(); ok {
		p.port.SetReadTimeout(time.Until(dl))
	}

	if _, err := p.port.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}
	resp, err := p.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	resp = strings.TrimRight(resp, "\r\n")
	if strings.HasPrefix(resp, "ERR ") {
		return "", fmt.Errorf("probe error: %s", resp[4:])
	}
	return resp, nil
}
