// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, reasoning adapter and runner use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - With for attaching per-turn attributes such as owner and conversation ids
//
// Usage:
//
//	logger := logging.New(&logging.Config{Level: logging.LogLevelInfo, Format: "json"})
//	eng := engine.New(func(o *engine.Options) { o.Logger = logger })
//
// The interface is kept minimal so any structured logger can be plugged in.
package logging
