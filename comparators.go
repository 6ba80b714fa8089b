package mvctest

import (
	"bytes"
	"github.com/shopspring/decimal"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Equal deep compares an expected value against an actual value
//
// comparison rules:
//   - an Any placeholder (see Any) matches any actual value
//   - numbers compare by value regardless of kind (int, uint, float, decimal.Decimal) and a numeric string compares with a number
//   - time.Time values compare with time.Time.Equal
//   - pointers are dereferenced (a pointer and a value of the pointed type can be equal)
//   - structs must be of the same type, all fields are compared
//   - maps compare keys and values, slices and arrays compare element-wise
func Equal(expected, actual any) bool {
	if isAnyPlaceholder(expected) {
		return true
	}
	if isNil(expected) || isNil(actual) {
		return isNil(expected) && isNil(actual)
	}
	return deepEqual(reflect.ValueOf(expected), reflect.ValueOf(actual), 0)
}

const maxDepth = 64

func deepEqual(ev, av reflect.Value, depth int) bool {
	if depth > maxDepth {
		return false
	}
	if ev.IsValid() && ev.CanInterface() && isAnyPlaceholder(ev.Interface()) {
		return true
	}
	ev, av = indirect(ev), indirect(av)
	if !ev.IsValid() || !av.IsValid() {
		return !ev.IsValid() && !av.IsValid()
	}
	if ev.CanInterface() && av.CanInterface() {
		if c, ok := compareValues(ev.Interface(), av.Interface()); ok {
			return c == 0
		}
	}
	if n1, ok := numericValue(ev); ok {
		if n2, ok := numericValue(av); ok {
			return n1.Equal(n2)
		}
		return false
	}
	if ev.Type() != av.Type() {
		if ev.Kind() == reflect.String && av.Kind() == reflect.String {
			return ev.String() == av.String()
		}
		if isList(ev) && isList(av) {
			return listsEqual(ev, av, depth)
		}
		return false
	}
	switch ev.Kind() {
	case reflect.Bool:
		return ev.Bool() == av.Bool()
	case reflect.String:
		return ev.String() == av.String()
	case reflect.Struct:
		for i := 0; i < ev.NumField(); i++ {
			if !deepEqual(ev.Field(i), av.Field(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Map:
		if ev.Len() != av.Len() {
			return false
		}
		iter := ev.MapRange()
		for iter.Next() {
			v := av.MapIndex(iter.Key())
			if !v.IsValid() || !deepEqual(iter.Value(), v, depth+1) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		return listsEqual(ev, av, depth)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ev.Pointer() == av.Pointer()
	}
	return false
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func listsEqual(ev, av reflect.Value, depth int) bool {
	if ev.Len() != av.Len() {
		return false
	}
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice && ev.Type().Elem().Kind() == reflect.Uint8 && av.Type().Elem().Kind() == reflect.Uint8 {
		return bytes.Equal(ev.Bytes(), av.Bytes())
	}
	for i := 0; i < ev.Len(); i++ {
		if !deepEqual(ev.Index(i), av.Index(i), depth+1) {
			return false
		}
	}
	return true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// compareValues compares values that have a natural ordering - decimals, times, and numbers/numeric strings
func compareValues(v1, v2 any) (int, bool) {
	switch vt1 := v1.(type) {
	case time.Time:
		if vt2, ok := v2.(time.Time); ok {
			return vt1.Compare(vt2), true
		}
		return 0, false
	case string:
		if n2, ok := toDecimal(v2); ok {
			if n1, err := decimal.NewFromString(strings.TrimSpace(vt1)); err == nil {
				return n1.Compare(n2), true
			}
			return -1, true
		}
		return 0, false
	}
	if n1, ok := toDecimal(v1); ok {
		if n2, ok := toDecimal(v2); ok {
			return n1.Compare(n2), true
		} else if s2, ok := v2.(string); ok {
			if n2, err := decimal.NewFromString(strings.TrimSpace(s2)); err == nil {
				return n1.Compare(n2), true
			}
			return -1, true
		}
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch vt := v.(type) {
	case decimal.Decimal:
		return vt, true
	case *decimal.Decimal:
		if vt != nil {
			return *vt, true
		}
		return decimal.Decimal{}, false
	}
	return numericValue(reflect.ValueOf(v))
}

func numericValue(v reflect.Value) (decimal.Decimal, bool) {
	if !v.IsValid() {
		return decimal.Decimal{}, false
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decimal.NewFromUint64(v.Uint()), true
	case reflect.Float32:
		return decimal.NewFromFloat32(float32(v.Float())), true
	case reflect.Float64:
		return decimal.NewFromFloat(v.Float()), true
	}
	return decimal.Decimal{}, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// lengthOf returns the length of a map, slice, array or string
func lengthOf(v any) (int, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}

// lookupKey looks up a key in a map (keys are compared using Equal)
func lookupKey(m any, key any) (any, bool) {
	rv := indirect(reflect.ValueOf(m))
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, false
	}
	iter := rv.MapRange()
	for iter.Next() {
		if k := iter.Key(); k.CanInterface() && Equal(key, k.Interface()) {
			if v := iter.Value(); v.CanInterface() {
				return v.Interface(), true
			}
			return nil, true
		}
	}
	return nil, false
}

// containsValue checks whether a map, slice or array contains a value (compared using Equal)
func containsValue(list any, value any) bool {
	rv := indirect(reflect.ValueOf(list))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if v := iter.Value(); v.CanInterface() && Equal(value, v.Interface()) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if v := rv.Index(i); v.CanInterface() && Equal(value, v.Interface()) {
				return true
			}
		}
	}
	return false
}

// isOfType checks whether the value is of the type of the sample (or, if the sample is a pointer to an interface, implements it)
func isOfType(v any, sample any) bool {
	st := reflect.TypeOf(sample)
	if st == nil || v == nil {
		return st == nil && v == nil
	}
	vt := reflect.TypeOf(v)
	if st.Kind() == reflect.Ptr && st.Elem().Kind() == reflect.Interface {
		return vt.Implements(st.Elem())
	}
	return vt == st
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
