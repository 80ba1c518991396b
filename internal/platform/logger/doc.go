// Package logger provides structured logging for genflow.
//
// It configures Go's standard library log/slog package to emit JSON records
// with a configurable level, and lets request-scoped loggers travel through
// a context.Context.
package logger
