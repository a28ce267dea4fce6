// Package logger is the pipeline's stderr logger. Debug, Info and
// Section output only appears in verbose mode (--verbose flag or
// REPOQA_VERBOSE); warnings always print.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type state struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}

var std = state{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.verbose
}

// SetOutput redirects log output, os.Stderr by default. Tests use this
// to capture messages.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = w
}

func (s *state) emit(verboseOnly bool, format string, args ...any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if verboseOnly && !s.verbose {
		return
	}
	fmt.Fprintf(s.out, format+"\n", args...)
}

// Debug prints a pipeline detail message in verbose mode.
func Debug(format string, args ...any) {
	std.emit(true, "[DEBUG] "+format, args...)
}

// Section prints a stage header in verbose mode.
func Section(name string) {
	std.emit(true, "\n=== %s ===", name)
}

// Info prints an informational message in verbose mode.
func Info(format string, args ...any) {
	std.emit(true, "[INFO] "+format, args...)
}

// Warn prints a warning. Warnings are not gated on verbose mode.
func Warn(format string, args ...any) {
	std.emit(false, "[WARN] "+format, args...)
}
