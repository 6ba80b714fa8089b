package mvctest

import (
	"encoding/json"
	"fmt"
	"github.com/go-andiamo/gopt"
	"reflect"
	"strconv"
	"strings"
)

const (
	FIRST = "FIRST" // FIRST is a special token for path in WithModelPath - and means resolve to first item in slice
	LAST  = "LAST"  // LAST is a special token for path in WithModelPath - and means resolve to last item in slice
	LEN   = "LEN"   // LEN is a special token for path in WithModelPath - and means resolve to length of slice
)

// modelPath resolves a json path into the json representation of a model
//
// e.g. "name", "owner.name", "FIRST.name", "tags.LEN"
func modelPath(model any, path string) (any, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("model cannot be represented as json: %w", err)
	}
	var v any
	if err = json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("model cannot be represented as json: %w", err)
	}
	return resolveJsonPath(v, path)
}

// bodyPath resolves a json path into a json body
func bodyPath(body []byte, path string) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("body is not json: %w", err)
	}
	return resolveJsonPath(v, path)
}

func resolveJsonPath(v any, path string) (av any, err error) {
	if v == nil {
		return nil, fmt.Errorf("json path %q into nil", path)
	}
	switch vt := v.(type) {
	case map[string]any:
		if path == "" || path == "." {
			av = vt
		} else if o, _ := gopt.ExtractJsonPath[any](vt, path); o.IsPresent() {
			av = o.Default(nil)
		} else if head, rest, ok := strings.Cut(path, "."); ok {
			if next, exists := vt[head]; exists {
				return resolveJsonPath(next, rest)
			}
			return nil, fmt.Errorf("json path %q does not exist", path)
		} else {
			return nil, fmt.Errorf("json path %q does not exist", path)
		}
	default:
		vo := reflect.ValueOf(v)
		if vo.Kind() != reflect.Slice {
			return nil, fmt.Errorf("json path %q into non object/array", path)
		}
		head, rest, hasRest := strings.Cut(path, ".")
		switch strings.ToUpper(head) {
		case "", ".":
			av = v
		case LEN:
			av = vo.Len()
		case FIRST, "0":
			if vo.Len() > 0 {
				av = vo.Index(0).Interface()
			} else {
				err = fmt.Errorf("json path %q into empty array", path)
			}
		case LAST:
			if l := vo.Len(); l > 0 {
				av = vo.Index(l - 1).Interface()
			} else {
				err = fmt.Errorf("json path %q into empty array", path)
			}
		default:
			if i, cerr := strconv.Atoi(head); cerr == nil {
				if l := vo.Len(); l > 0 {
					if i >= 0 && i < l {
						av = vo.Index(i).Interface()
					} else if i < 0 && (l+i) >= 0 {
						av = vo.Index(l + i).Interface()
					} else {
						err = fmt.Errorf("json path %q array index out of range", path)
					}
				} else {
					err = fmt.Errorf("json path %q into empty array", path)
				}
			} else {
				return nil, fmt.Errorf("json path %q invalid array index", path)
			}
		}
		if err == nil && hasRest {
			return resolveJsonPath(av, rest)
		}
	}
	return av, err
}
