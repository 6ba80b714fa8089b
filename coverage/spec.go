package coverage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-andiamo/chioas"
	"gopkg.in/yaml.v3"
	"io"
	"net/http"
	"slices"
	"strings"
)

// Spec is the coverage of actions against an OAS
type Spec struct {
	CoveredPaths    map[string]*SpecPath
	NonCoveredPaths map[string]*SpecPath
	// UnknownActions are actions that were tested but are not (or cannot be) matched to an OAS path
	UnknownActions map[string]*Action
}

type SpecPath struct {
	Path              string
	PathDef           *chioas.Path
	CoveredMethods    map[string]*SpecMethod
	NonCoveredMethods map[string]*SpecMethod
}

type SpecMethod struct {
	Method    string
	MethodDef *chioas.Method
	Common
}

func (s *Spec) PathsCovered() (total int, covered int, perc float64) {
	covered = len(s.CoveredPaths)
	total = covered + len(s.NonCoveredPaths)
	if total > 0 {
		perc = float64(covered) / float64(total)
	}
	return
}

func (s *Spec) MethodsCovered() (total int, covered int, perc float64) {
	for _, sp := range s.CoveredPaths {
		total += len(sp.CoveredMethods) + len(sp.NonCoveredMethods)
		covered += len(sp.CoveredMethods)
	}
	for _, sp := range s.NonCoveredPaths {
		total += len(sp.NonCoveredMethods)
	}
	if total > 0 {
		perc = float64(covered) / float64(total)
	}
	return
}

// LoadSpec loads an OAS (json or yaml) to compare coverage against
func (c *Coverage) LoadSpec(r io.Reader) (err error) {
	br := bufio.NewReader(r)
	var spec *chioas.Definition
	var first []byte
	// sniff for json or yaml...
	if first, err = br.Peek(1); err == nil {
		spec = new(chioas.Definition)
		if first[0] == '{' {
			err = json.NewDecoder(br).Decode(spec)
		} else {
			err = yaml.NewDecoder(br).Decode(spec)
		}
	}
	if err != nil {
		return fmt.Errorf("unable to read OAS: %w", err)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.OAS = spec
	return nil
}

// SpecCoverage compares the actions tested against the loaded OAS
//
// an OAS path is covered if any tested action's route template matches it (ignoring path var names),
// an OAS method is covered if any of those actions accepts the method
func (c *Coverage) SpecCoverage() (*Spec, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.OAS == nil {
		return nil, errors.New("spec not supplied")
	}
	result := &Spec{
		CoveredPaths:    make(map[string]*SpecPath),
		NonCoveredPaths: make(map[string]*SpecPath),
		UnknownActions:  make(map[string]*Action),
	}
	seen := make(map[string]struct{})
	check := func(path string, pathDef *chioas.Path, methods chioas.Methods) {
		sp := &SpecPath{
			Path:              path,
			PathDef:           pathDef,
			CoveredMethods:    make(map[string]*SpecMethod),
			NonCoveredMethods: make(map[string]*SpecMethod),
		}
		keys := c.normalizedPaths[routeKey(path)]
		for k := range keys {
			seen[k] = struct{}{}
		}
		for m, mDef := range methods {
			sm := &SpecMethod{Method: m, MethodDef: &mDef}
			found := false
			for k := range keys {
				if covA := c.Actions[k]; acceptsMethod(covA.Action, m) {
					found = true
					sm.merge(covA.Common)
				}
			}
			if found {
				sp.CoveredMethods[m] = sm
			} else {
				sp.NonCoveredMethods[m] = sm
			}
		}
		if len(keys) > 0 {
			result.CoveredPaths[path] = sp
		} else {
			result.NonCoveredPaths[path] = sp
		}
	}
	if len(c.OAS.Methods) > 0 {
		check("/", nil, c.OAS.Methods)
	}
	_ = c.OAS.WalkPaths(func(path string, pathDef *chioas.Path) (bool, error) {
		if len(pathDef.Methods) > 0 {
			check(path, pathDef, pathDef.Methods)
		}
		return true, nil
	})
	for k, covA := range c.Actions {
		if _, ok := seen[k]; !ok {
			result.UnknownActions[k] = &Action{Action: covA.Action, Common: covA.Common.clone()}
		}
	}
	return result, nil
}

func acceptsMethod(action interface{ HttpMethods() []string }, method string) bool {
	methods := action.HttpMethods()
	if len(methods) == 0 {
		return method != http.MethodOptions && method != http.MethodHead
	}
	return slices.ContainsFunc(methods, func(m string) bool {
		return strings.EqualFold(m, method)
	})
}
