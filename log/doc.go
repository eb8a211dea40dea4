// Package log provides the leveled logging seam shared by all graphex
// packages.
//
// Components that log (the extraction pool, the ingest builder, the stores)
// accept any implementation of the Logger interface. Two implementations
// ship with the package: StdLogger, backed by the standard library, and
// GologLogger, a thin wrapper over github.com/kataras/golog for applications
// that already use it.
//
// # Levels
//
// Five levels, in increasing severity: LevelDebug, LevelInfo, LevelWarn,
// LevelError, LevelNone (disables output). A logger emits a message when its
// configured level is at or below the message level.
//
// # Usage
//
//	logger := log.NewStdLogger(log.LevelDebug)
//	logger.Info("run %s started with %d chunks", runID, len(chunks))
//
// Wrapping an existing golog instance:
//
//	g := golog.New()
//	g.SetPrefix("[myapp] ")
//	logger := log.NewGologLogger(g)
//	logger.SetLevel(log.LevelDebug)
//
// Packages fall back to the package-level default logger when no logger is
// injected; replace it with SetDefault, or silence it with NopLogger.
package log
