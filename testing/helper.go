package testing

import (
	"context"
	"fmt"
	"github.com/go-andiamo/mvctest/framing"
	"io"
	"os"
	"strings"
	"sync"
)

// T is the subset of *testing.T used to report assertion failures
type T interface {
	Helper()
	Log(args ...any)
	Fatal(args ...any)
	Failed() bool
	Name() string
}

// Reportable is an error that can describe itself for test output
type Reportable interface {
	error
	framing.Framed
	// TestFormat is the detailed (multi-line) description of the failure
	TestFormat() string
}

// Helper reports the failures of a single test chain
//
// only the first reported failure is recorded - once failed, the chain is expected to stop asserting
type Helper interface {
	// Report reports a failure - when wrapping a T, this calls Fatal
	Report(err error)
	// Err is the first reported failure (nil if none)
	Err() error
	Failed() bool
	Log(args ...any)
	Name() string
	Context() context.Context
}

// NewHelper creates a new helper
//
// if t is nil, output is written to stdout/stderr (os.Stdout/os.Stderr if nil) in the same format as go test
//
//go:noinline
func NewHelper(t T, stdout io.Writer, stderr io.Writer) Helper {
	f := framing.NewFrame(1)
	result := &helper{
		wrapped: t,
		frame:   f,
		stdout:  stdout,
		stderr:  stderr,
	}
	if t != nil {
		result.name = t.Name()
	} else if f != nil {
		result.name = f.TestName()
	}
	if result.stdout == nil {
		result.stdout = os.Stdout
	}
	if result.stderr == nil {
		result.stderr = os.Stderr
	}
	return result
}

type helper struct {
	wrapped T
	name    string
	mu      sync.RWMutex
	err     error
	frame   *framing.Frame
	stdout  io.Writer
	stderr  io.Writer
}

var _ Helper = (*helper)(nil)

func (h *helper) Report(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	first := h.err == nil
	if first {
		h.err = err
	}
	h.mu.Unlock()
	if !first {
		return
	}
	if h.wrapped != nil {
		h.wrapped.Helper()
		if r, ok := err.(Reportable); ok {
			h.wrapped.Log(r.TestFormat())
		}
		h.wrapped.Fatal(err)
		return
	}
	frame := h.frame
	if r, ok := err.(Reportable); ok && r.Frame() != nil {
		frame = r.Frame()
		h.log(h.stderr, frame, r.TestFormat())
	} else {
		h.log(h.stderr, frame, err.Error())
	}
	_, _ = fmt.Fprintf(h.stderr, "--- FAIL: %s\n", h.name)
}

func (h *helper) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *helper) Failed() bool {
	if h.Err() != nil {
		return true
	}
	return h.wrapped != nil && h.wrapped.Failed()
}

func (h *helper) Log(args ...any) {
	if h.wrapped != nil {
		h.wrapped.Helper()
		h.wrapped.Log(args...)
	} else {
		h.log(h.stdout, h.frame, fmt.Sprintln(args...))
	}
}

func (h *helper) Name() string {
	return h.name
}

func (h *helper) Context() context.Context {
	if c, ok := h.wrapped.(interface{ Context() context.Context }); ok {
		return c.Context()
	}
	return context.Background()
}

func (h *helper) log(w io.Writer, frame *framing.Frame, s string) {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	_, _ = fmt.Fprintf(w, "    %s: %s\n", frame.Location(), lines[0])
	for l := 1; l < len(lines); l++ {
		if line := lines[l]; line != "" {
			_, _ = fmt.Fprintf(w, "        %s\n", line)
		}
	}
}
