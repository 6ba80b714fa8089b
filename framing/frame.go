package framing

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Framed is implemented by anything that records where it was declared or asserted
type Framed interface {
	Frame() *Frame
}

// NewFrame captures the frame of the caller of the function calling NewFrame
//
// skip=0 already skips the immediate caller of NewFrame - skip is the number of further frames to skip
//
//go:noinline
func NewFrame(skip int) *Frame {
	if skip < 0 {
		skip = 0
	}
	pcs := make([]uintptr, skip+4)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for i := 0; ; i++ {
		rf, more := frames.Next()
		if rf.PC == 0 {
			return nil
		}
		if i == skip+1 {
			return frameOf(rf)
		}
		if !more {
			return nil
		}
	}
}

const maxFindDepth = 128

// FindFrame walks the call stack, starting at the caller of FindFrame, and returns the first frame accepted by match
//
// inlined calls are reported as frames of their own
//
//go:noinline
func FindFrame(match func(f *Frame) bool) *Frame {
	pcs := make([]uintptr, maxFindDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		rf, more := frames.Next()
		if rf.PC == 0 {
			return nil
		}
		if f := frameOf(rf); match(f) {
			return f
		}
		if !more {
			return nil
		}
	}
}

func frameOf(rf runtime.Frame) *Frame {
	f := &Frame{
		File: rf.File,
		Line: rf.Line,
		Pc:   rf.PC,
	}
	f.Name, f.Package = splitFunctionName(rf.Function)
	return f
}

// Frame is information about where something was declared
type Frame struct {
	File    string
	Line    int
	Name    string
	Package string
	Pc      uintptr
}

// Location is the short file name and line of the frame (e.g. "pets_test.go:42")
func (f *Frame) Location() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

// TestName is the name of the top-level test function of the frame (e.g. "TestPets" for "TestPets.func1")
func (f *Frame) TestName() string {
	if f == nil {
		return ""
	}
	name, _, _ := strings.Cut(f.Name, ".")
	return name
}

func splitFunctionName(name string) (string, string) {
	pkg := ""
	if last := strings.LastIndex(name, "/"); last >= 0 {
		pkg += name[:last] + "/"
		name = name[last+1:]
	}
	if period := strings.Index(name, "."); period >= 0 {
		pkg += name[:period]
		name = name[period+1:]
	}
	return strings.ReplaceAll(name, "·", "."), pkg
}
