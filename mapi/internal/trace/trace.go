// Package trace implements a very simple per-subsystem tracing facility.
package trace

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// A Trace represents a tracing object for one subsystem.
type Trace struct {
	*log.Logger
}

// New returns a new Trace object, initially disabled (output discarded).
func New(prefix ...string) *Trace {
	return &Trace{Logger: log.New(io.Discard, fmt.Sprintf("%s ", strings.Join(prefix, " ")), log.Ldate|log.Ltime|log.Lshortfile)}
}

// On reports whether the trace output is currently enabled.
func (t *Trace) On() bool { return t.Writer() != io.Discard }

// SetOn enables or disables the trace output.
func (t *Trace) SetOn(on bool) {
	if on {
		t.SetOutput(os.Stderr)
	} else {
		t.SetOutput(io.Discard)
	}
}

// A Flag is a flag.Value that toggles a Trace's output.
type Flag struct {
	trace *Trace
}

// NewFlag returns a new Flag bound to trace.
func NewFlag(trace *Trace) *Flag { return &Flag{trace: trace} }

func (f *Flag) String() string {
	if f.trace == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(f.trace.On())
}

// IsBoolFlag implements the flag.Value boolean-flag convention.
func (f *Flag) IsBoolFlag() bool { return true }

// Set implements flag.Value.
func (f *Flag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	f.trace.SetOn(b)
	return nil
}
