package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/flashkit/rsflash/bringup"
	"github.com/flashkit/rsflash/pkg"
	"github.com/flashkit/rsflash/pkg/prof"
	"github.com/flashkit/rsflash/probe"
	"github.com/flashkit/rsflash/probe/usbprobe"
)

// flags holds the parsed CLI surface (§8), bound directly to cobra flag
// variables and translated into bringup.Args in runRoot.
type flags struct {
	data         string
	output       string
	chip         string
	chipConfig   string
	probeSerial  string
	probeSpeedHz uint32
	timeout      time.Duration
	eraseTimeout time.Duration
	cpuProfile   string
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "rsflash <elf-path>",
		Short: "Dump or program an external SPI flash chip through a RAM-resident target agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, f, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flagSet := cmd.Flags()
	flagSet.StringVar(&f.data, "data", "", "input file for a Load image (required unless the image dumps)")
	flagSet.StringVar(&f.output, "output", bringup.DefaultOutput, "output file for a Dump image")
	flagSet.StringVar(&f.chip, "chip", "", "chip identifier, resolved via the chip registry")
	flagSet.StringVar(&f.chipConfig, "chip-config", "", "path to a chips.yaml overriding the built-in registry")
	flagSet.StringVar(&f.probeSerial, "probe-serial", "", "probe serial number or transport path, if ambiguous")
	flagSet.Uint32Var(&f.probeSpeedHz, "probe-speed", 0, "probe interface clock, Hz (0: chip default)")
	flagSet.DurationVar(&f.timeout, "timeout", bringup.DefaultTimeout, "steady-state per-chunk control-word poll timeout")
	flagSet.DurationVar(&f.eraseTimeout, "erase-timeout", bringup.DefaultEraseTimeout, "poll timeout for the first Load chunk, covering chip erase")
	flagSet.StringVar(&f.cpuProfile, "cpu-profile", "", "write a CPU profile to this path (no-op unless built with -tags profile)")
	_ = cmd.MarkFlagRequired("chip")

	return cmd
}

func runRoot(cmd *cobra.Command, f *flags, elfPath string) error {
	if f.cpuProfile != "" {
		if err := prof.StartCPU(f.cpuProfile); err != nil {
			pkg.LogWarn(pkg.ComponentHost, "cpu profiling not started", "error", err)
		} else {
			defer prof.StopCPU()
		}
	}

	args := bringup.Args{
		ELFPath:      elfPath,
		DataPath:     f.data,
		Output:       f.output,
		Chip:         f.chip,
		ChipConfig:   f.chipConfig,
		ProbeSerial:  f.probeSerial,
		ProbeSpeedHz: f.probeSpeedHz,
		Timeout:      f.timeout,
		EraseTimeout: f.eraseTimeout,
		NewProbe:     func() probe.Probe { return usbprobe.New() },
	}

	return bringup.Run(cmd.Context(), args)
}
