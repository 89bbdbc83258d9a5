package log

import (
	"io"
	"os"
	"sync"
)

// Output writes formatted entries to a destination.
type Output interface {
	Write(entry *Entry, formatted []byte) error
	Close() error
}

// ConsoleOutput writes entries to stderr.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns an Output writing to stderr.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{w: os.Stderr}
}

// Write implements Output.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output. Console output holds no resources.
func (o *ConsoleOutput) Close() error { return nil }

// WriterOutput writes entries to an arbitrary io.Writer. Tests use it to
// capture log lines.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput returns an Output writing to w.
func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

// Write implements Output.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output.
func (o *WriterOutput) Close() error { return nil }
