// Package pkg provides shared utilities for the rsflash host/agent split.
//
// This package contains common functionality used across the image parser,
// the handshake protocol, the probe backends, and the host CLI, including:
//
//   - Structured logging via Go's standard [log/slog] package, with an
//     environment-variable filter override
//   - Typed error kinds matching the six fatal error buckets of the
//     handshake protocol
//   - Component identifiers for log filtering
//
// # Logging
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentTransfer, "chunk acknowledged", "chunk", 3)
//
// # Environment override
//
// If RSFLASH_LOG is set and is valid UTF-8, it overrides the default level
// for all components (see [ApplyLogEnv]). A non-UTF-8 value makes
// [ApplyLogEnv] return a *UsageError, which the CLI treats as fatal at
// startup.
//
// # Errors
//
//	var ie *pkg.ImageError
//	if errors.As(err, &ie) {
//	    // handle descriptor/symbol problems
//	}
package pkg
