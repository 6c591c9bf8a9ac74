//go:build tinygo

// Command agent is the TinyGo build entry point for one board target.
// Build with, e.g.:
//
//	tinygo build -target=pico -o agent.elf ./agent/cmd/agent
package main

import "github.com/flashkit/rsflash/agent"

func main() {
	agent.Run()
}
