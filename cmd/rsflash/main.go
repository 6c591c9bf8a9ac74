// Command rsflash is the host driver CLI: it parses a target ELF image,
// programs and starts the RAM-resident agent it describes, and drives
// the dump/load handshake loop to or from a local file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flashkit/rsflash/pkg"
)

func main() {
	if err := pkg.ApplyLogEnv(); err != nil {
		pkg.LogError(pkg.ComponentHost, "startup", "error", err)
		os.Exit(exitCode(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		pkg.LogInfo(pkg.ComponentHost, "shutting down")
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		pkg.LogError(pkg.ComponentHost, "rsflash failed", "error", err)
		os.Exit(exitCode(err))
	}
}
