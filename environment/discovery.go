package environment

import (
	"github.com/go-andiamo/mvctest/framing"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// discoverTestPackage finds the package of the nearest calling test (a frame in a _test.go file)
func discoverTestPackage() string {
	if f := framing.FindFrame(func(f *framing.Frame) bool {
		return strings.HasSuffix(f.File, "_test.go")
	}); f != nil {
		return f.Package
	}
	return ""
}

// discoverWebModule finds the module (main module or dependency) that the test package belongs to
//
// returns "" if the build info is not available or no module (or more than one equally) matches
func discoverWebModule(testPackage string) string {
	if testPackage == "" {
		return ""
	}
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	candidates := make([]string, 0, len(bi.Deps)+1)
	candidates = append(candidates, bi.Main.Path)
	for _, dep := range bi.Deps {
		if dep != nil {
			candidates = append(candidates, dep.Path)
		}
	}
	best := ""
	ambiguous := false
	for _, c := range candidates {
		if c == "" || (testPackage != c && !strings.HasPrefix(testPackage, c+"/")) {
			continue
		}
		switch {
		case len(c) > len(best):
			best, ambiguous = c, false
		case c == best:
			ambiguous = true
		}
	}
	if ambiguous {
		return ""
	}
	return best
}
