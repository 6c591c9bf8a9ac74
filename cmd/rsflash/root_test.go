package main

import (
	"testing"

	"github.com/flashkit/rsflash/bringup"
)

func TestNewRootCommandDefaults(t *testing.T) {
	cmd := newRootCommand()

	flagSet := cmd.Flags()
	for name, want := range map[string]string{
		"output":       bringup.DefaultOutput,
		"chip-config":  "",
		"probe-serial": "",
		"cpu-profile":  "",
	} {
		got, err := flagSet.GetString(name)
		if err != nil {
			t.Fatalf("GetString(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("flag %q default = %q, want %q", name, got, want)
		}
	}

	timeout, err := flagSet.GetDuration("timeout")
	if err != nil {
		t.Fatalf("GetDuration(timeout): %v", err)
	}
	if timeout != bringup.DefaultTimeout {
		t.Errorf("timeout default = %v, want %v", timeout, bringup.DefaultTimeout)
	}

	eraseTimeout, err := flagSet.GetDuration("erase-timeout")
	if err != nil {
		t.Fatalf("GetDuration(erase-timeout): %v", err)
	}
	if eraseTimeout != bringup.DefaultEraseTimeout {
		t.Errorf("erase-timeout default = %v, want %v", eraseTimeout, bringup.DefaultEraseTimeout)
	}

	if chipFlag := flagSet.Lookup("chip"); chipFlag == nil {
		t.Fatal("expected a --chip flag")
	}
}

func TestNewRootCommandRequiresExactlyOneArg(t *testing.T) {
	cmd := newRootCommand()
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected error for zero positional args")
	}
	if err := cmd.Args(cmd, []string{"a.elf", "b.elf"}); err == nil {
		t.Error("expected error for two positional args")
	}
	if err := cmd.Args(cmd, []string{"a.elf"}); err != nil {
		t.Errorf("unexpected error for one positional arg: %v", err)
	}
}
