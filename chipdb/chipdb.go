// Package chipdb resolves a chip identifier (the CLI's --chip flag)
// into the probe.Options a bring-up needs to attach: interface speed,
// any chip-specific serial defaults, and descriptive metadata surfaced
// in logs. It is the "named target description from a configuration
// registry keyed by a chip identifier" of §4.5 step 1.
//
// Resolution is layered with github.com/spf13/viper, the way
// mbrukner-FoenixMgrGo layers Viper over Cobra for firmware-flashing
// profiles: built-in defaults, then an optional
// ~/.config/rsflash/chips.yaml the operator can extend, then explicit
// CLI flags (applied by the caller after Resolve returns).
package chipdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/flashkit/rsflash/pkg"
)

// Chip is one resolved registry entry.
type Chip struct {
	Name        string `mapstructure:"-"`
	Description string `mapstructure:"description"`
	SpeedHz     uint32 `mapstructure:"speed_hz"`
	DefaultPort string `mapstructure:"default_port"`
}

// builtin is seeded from a handful of common Cortex-M targets likely to
// drive an external SPI flash through a debug probe. Operators extend or
// override this via chips.yaml.
var builtin = map[string]Chip{
	"stm32h743": {Description: "STMicroelectronics STM32H743, Cortex-M7", SpeedHz: 4_000_000},
	"nrf52840":  {Description: "Nordic nRF52840, Cortex-M4F", SpeedHz: 4_000_000},
	"rp2040":    {Description: "Raspberry Pi RP2040, dual Cortex-M0+", SpeedHz: 2_000_000},
	"efr32mg":   {Description: "Silicon Labs EFR32MG, Cortex-M33", SpeedHz: 4_000_000},
}

// Resolve looks up name in the layered registry: one config file over
// the built-in table. The file is the CLI-provided config path if one is
// given, otherwise ~/.config/rsflash/chips.yaml if it exists; the home
// file is not read when a config path is given. An unknown chip
// identifier is a *pkg.UsageError.
func Resolve(name, configPath string) (Chip, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, c := range builtin {
		v.SetDefault(key+".description", c.Description)
		v.SetDefault(key+".speed_hz", c.SpeedHz)
		v.SetDefault(key+".default_port", c.DefaultPort)
	}

	path := configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "rsflash", "chips.yaml")
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Chip{}, &pkg.UsageError{Op: "read chip registry", Err: err}
			}
		}
	}

	if !v.IsSet(name + ".description") && !v.IsSet(name+".speed_hz") {
		if _, ok := builtin[name]; !ok {
			return Chip{}, &pkg.UsageError{Op: "resolve chip", Err: fmt.Errorf("unknown chip %q", name)}
		}
	}

	var c Chip
	if err := v.UnmarshalKey(name, &c); err != nil {
		return Chip{}, &pkg.UsageError{Op: "resolve chip", Err: err}
	}
	c.Name = name
	pkg.LogDebug(pkg.ComponentHost, "resolved chip", "chip", name, "speed_hz", c.SpeedHz)
	return c, nil
}

// Names returns the built-in chip identifiers, sorted for help text.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
