// Package bringup implements the host's startup and lifecycle sequence
// (§4.5): resolve the chip, parse the image, validate the CLI's file
// arguments against the image's direction, attach to the probe, program
// and start the target, locate its RTT log channel, run the transfer
// loop, and wait for a confirmed halt.
package bringup

import (
	"context"
	"os"
	"time"

	"github.com/flashkit/rsflash/chipdb"
	"github.com/flashkit/rsflash/handshake"
	"github.com/flashkit/rsflash/image"
	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/rtt"
	"github.com/flashkit/rsflash/transfer"
)

// DefaultOutput is the fixed relative Dump output path from spec §6,
// kept as the default for the --output flag (§9 Open Question,
// resolved: configurable with this default).
const DefaultOutput = "dump.bin"

// DefaultTimeout and DefaultEraseTimeout are the steady-state and
// one-shot first-Load-chunk deadlines from §4.4.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultEraseTimeout = 5 * time.Minute
)

// RTTRetries and RTTInterval bound how long bring-up waits for the RTT
// anchor to become non-zero after reset (§4.5 step 6).
const (
	RTTRetries  = rtt.DefaultRetries
	RTTInterval = rtt.DefaultInterval
)

// Args is the fully-parsed CLI input to one run.
type Args struct {
	ELFPath      string
	DataPath     string // required for Load, forbidden for Dump
	Output       string // Dump destination; defaults to DefaultOutput
	Chip         string
	ChipConfig   string // path to an optional chips.yaml override
	ProbeSerial  string
	ProbeSpeedHz uint32
	Timeout      time.Duration
	EraseTimeout time.Duration

	// NewProbe constructs the probe.Probe backend to attach. Tests
	// inject a simprobe-backed constructor here; the CLI wires
	// usbprobe.New.
	NewProbe func() probe.Probe
}

// Run performs spec §4.5 steps 1-8 end to end.
func Run(ctx context.Context, args Args) error {
	if args.Timeout == 0 {
		args.Timeout = DefaultTimeout
	}
	if args.EraseTimeout == 0 {
		args.EraseTimeout = DefaultEraseTimeout
	}
	if args.Output == "" {
		args.Output = DefaultOutput
	}

	chip, err := chipdb.Resolve(args.Chip, args.ChipConfig)
	if err != nil {
		return err
	}

	img, err := image.Load(args.ELFPath)
	if err != nil {
		return err
	}

	if err := validateDataPath(img.Descriptor.Direction, args.DataPath); err != nil {
		return err
	}

	plan, err := handshake.NewPlan(img)
	if err != nil {
		return err
	}

	p := args.NewProbe()
	opts := probe.Options{Chip: chip.Name, Serial: firstNonEmpty(args.ProbeSerial, chip.DefaultPort), Speed: firstNonZero(args.ProbeSpeedHz, chip.SpeedHz)}
	if err := p.Attach(ctx, opts); err != nil {
		return probe.WrapError("attach", 0, err)
	}
	defer p.Detach()

	if err := p.ProgramSegments(ctx, img.Segments); err != nil {
		return err
	}
	if err := p.Reset(ctx, img.Entry); err != nil {
		return probe.WrapError("start core", img.Entry, err)
	}

	cb, err := rtt.Locate(ctx, p, img.RTTAddr, RTTRetries, RTTInterval)
	if err != nil {
		return err
	}
	pump, err := rtt.NewPump(ctx, p, cb)
	if err != nil {
		return err
	}

	dumpFile, loadFile, err := openDataFiles(img.Descriptor.Direction, args.DataPath, args.Output)
	if err != nil {
		return err
	}
	if dumpFile != nil {
		defer dumpFile.Close()
	}
	if loadFile != nil {
		defer loadFile.Close()
	}

	cfg := transfer.Config{
		Plan:         plan,
		Probe:        p,
		Log:          pump,
		Timeout:      args.Timeout,
		EraseTimeout: args.EraseTimeout,
	}
	if dumpFile != nil {
		cfg.DumpWriter = dumpFile
	}
	if loadFile != nil {
		cfg.LoadReader = loadFile
	}

	if err := transfer.Run(ctx, cfg); err != nil {
		return err
	}

	return waitHalted(ctx, p, pump)
}

// validateDataPath enforces §4.5 step 3: Load requires --data, Dump
// forbids it.
func validateDataPath(dir image.Direction, dataPath string) error {
	switch dir {
	case image.Load:
		if dataPath == "" {
			return &pkg.UsageError{Op: "validate arguments", Err: errRequiredData}
		}
	case image.Dump:
		if dataPath != "" {
			return &pkg.UsageError{Op: "validate arguments", Err: errUnexpectedData}
		}
	}
	return nil
}

func openDataFiles(dir image.Direction, dataPath, output string) (dump *os.File, load *os.File, err error) {
	switch dir {
	case image.Dump:
		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, &pkg.IoError{Op: "create dump output", Path: output, Err: err}
		}
		return f, nil, nil
	case image.Load:
		f, err := os.Open(dataPath)
		if err != nil {
			return nil, nil, &pkg.IoError{Op: "open load input", Path: dataPath, Err: err}
		}
		return nil, f, nil
	}
	return nil, nil, nil
}

// waitHalted drains the log channel until the core is observed halted
// on two consecutive polls (§4.5 step 8, §9 halt-detection note).
func waitHalted(ctx context.Context, p probe.Probe, pump *rtt.Pump) error {
	const drainBytes = 1024
	consecutive := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		halted, err := p.Halted(ctx)
		if err != nil {
			return probe.WrapError("query halted state", 0, err)
		}
		if halted {
			consecutive++
			if consecutive >= 2 {
				return nil
			}
		} else {
			consecutive = 0
		}

		if pump != nil {
			if err := pump.Drain(ctx, drainBytes); err != nil {
				pkg.LogWarn(pkg.ComponentHost, "RTT drain failed while awaiting halt", "error", err)
			}
		}
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZero(a, b uint32) uint32 {
	if a != 0 {
		return a
	}
	return b
}

var (
	errRequiredData   = usageErr("--data is required for a Load image")
	errUnexpectedData = usageErr("--data must not be given for a Dump image")
)

type usageErr string

func (e usageErr) Error() string { return string(e) }
