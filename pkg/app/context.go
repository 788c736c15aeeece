package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Destinations for command output and diagnostics
	Out    io.Writer
	ErrOut io.Writer

	// Structured logger, level chosen from Verbose and Quiet
	Logger *slog.Logger

	// Common timeouts
	DefaultTimeout time.Duration

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context writing to stdout/stderr
func NewContext() *Context {
	c := &Context{
		Context:        context.Background(),
		OutputFormat:   "table",
		Out:            os.Stdout,
		ErrOut:         os.Stderr,
		DefaultTimeout: 30 * time.Second,
	}
	c.Logger = NewLogger(c.ErrOut, c.Verbose, c.Quiet)
	return c
}

// NewLogger builds a text logger: debug when verbose, errors only when quiet
func NewLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbosity updates the flags and rebuilds the logger
func (c *Context) SetVerbosity(verbose, quiet bool) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.Logger = NewLogger(c.ErrOut, verbose, quiet)
}

// WithTimeout creates a context with timeout
func (c *Context) WithTimeout(timeout time.Duration) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// WithCancel creates a cancellable context
func (c *Context) WithCancel() (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// Log outputs a debug message through the logger
func (c *Context) Log(message string, args ...any) {
	c.Logger.Debug(message, args...)
}

// Print writes a line of command output unless quiet
func (c *Context) Print(format string, args ...any) {
	if !c.Quiet {
		fmt.Fprintf(c.Out, format+"\n", args...)
	}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(c.ErrOut, "Error:", message)
	}
}
