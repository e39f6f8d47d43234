// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional scope, and message.
// The scope is typically a worker name ("worker-3") or a component ("scan").
//
// # Basic Usage
//
//	logger.Info("", "Scan started")
//	logger.Warn("scan", "skipping %s: %v", path, err)
//	logger.Error("worker-2", "job panicked: %v", r)
//
// The default logger writes to stderr so that reports on stdout stay clean.
//
// # Log Levels
//
// Messages below the configured level are filtered. ParseLevel accepts
// "debug", "info", "warn" and "error".
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger
