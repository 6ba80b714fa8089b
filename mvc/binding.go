package mvc

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ValueProvider provides raw string values for binding
type ValueProvider interface {
	ContainsPrefix(prefix string) bool
	GetValue(key string) []string
}

// ValueProviderFactory creates a value provider for a parameter source
type ValueProviderFactory interface {
	Source() ParameterSource
	CreateValueProvider(cc *ControllerContext) (ValueProvider, error)
}

// DefaultValueProviderFactories returns the default value provider factories - route, query, form & header
func DefaultValueProviderFactories() []ValueProviderFactory {
	return []ValueProviderFactory{
		&RouteValueProviderFactory{},
		&QueryValueProviderFactory{},
		&FormValueProviderFactory{},
		&HeaderValueProviderFactory{},
	}
}

type valuesProvider url.Values

func (vp valuesProvider) ContainsPrefix(prefix string) bool {
	if prefix == "" {
		return len(vp) > 0
	}
	for k := range vp {
		if len(k) >= len(prefix) && strings.EqualFold(k[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func (vp valuesProvider) GetValue(key string) []string {
	if v, ok := vp[key]; ok {
		return v
	}
	for k, v := range vp {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

type RouteValueProviderFactory struct{}

func (f *RouteValueProviderFactory) Source() ParameterSource {
	return SourceRoute
}

func (f *RouteValueProviderFactory) CreateValueProvider(cc *ControllerContext) (ValueProvider, error) {
	result := valuesProvider{}
	if cc.RouteData != nil {
		for k, v := range cc.RouteData.Values {
			if v != nil {
				result[k] = []string{fmt.Sprint(v)}
			}
		}
	}
	return result, nil
}

type QueryValueProviderFactory struct{}

func (f *QueryValueProviderFactory) Source() ParameterSource {
	return SourceQuery
}

func (f *QueryValueProviderFactory) CreateValueProvider(cc *ControllerContext) (ValueProvider, error) {
	q, err := url.ParseQuery(cc.HttpContext.Request.URL.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid query string: %w", err)
	}
	return valuesProvider(q), nil
}

type FormValueProviderFactory struct{}

func (f *FormValueProviderFactory) Source() ParameterSource {
	return SourceForm
}

func (f *FormValueProviderFactory) CreateValueProvider(cc *ControllerContext) (ValueProvider, error) {
	r := cc.HttpContext.Request
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/x-www-form-urlencoded" || r.Body == nil {
		return valuesProvider{}, nil
	}
	data, err := readBody(r)
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return valuesProvider(form), nil
}

type HeaderValueProviderFactory struct{}

func (f *HeaderValueProviderFactory) Source() ParameterSource {
	return SourceHeader
}

func (f *HeaderValueProviderFactory) CreateValueProvider(cc *ControllerContext) (ValueProvider, error) {
	return valuesProvider(cc.HttpContext.Request.Header), nil
}

// readBody reads the request body - leaving the body re-readable
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// ArgumentBinder binds the arguments of a controller action
type ArgumentBinder interface {
	// BindArguments binds the action parameters into arguments (keyed by parameter name)
	//
	// binding and validation failures are recorded in the model state - a returned error means binding could not be performed
	BindArguments(cc *ControllerContext, controller any, arguments map[string]any) error
}

// DefaultArgumentBinder is the default ArgumentBinder
type DefaultArgumentBinder struct {
	factories []ValueProviderFactory
}

// NewArgumentBinder creates a new argument binder using the value provider factories
func NewArgumentBinder(factories ...ValueProviderFactory) *DefaultArgumentBinder {
	return &DefaultArgumentBinder{factories: factories}
}

var errNotControllerAction = errors.New("action descriptor is not a controller action")

func (b *DefaultArgumentBinder) BindArguments(cc *ControllerContext, controller any, arguments map[string]any) error {
	d := cc.ControllerDescriptor()
	if d == nil {
		return errNotControllerAction
	}
	factories := b.factories
	if len(cc.ValueProviderFactories) > 0 {
		factories = cc.ValueProviderFactories
	}
	providers := make(map[ParameterSource]ValueProvider, len(factories))
	for _, f := range factories {
		vp, err := f.CreateValueProvider(cc)
		if err != nil {
			return err
		}
		providers[f.Source()] = vp
	}
	for _, p := range d.Parameters {
		v, bound, err := b.bindParameter(cc, providers, p)
		if err != nil {
			return err
		}
		if bound {
			arguments[p.Name] = v
		}
	}
	return nil
}

func (b *DefaultArgumentBinder) bindParameter(cc *ControllerContext, providers map[ParameterSource]ValueProvider, p ParameterDescriptor) (any, bool, error) {
	switch {
	case p.Source == SourceServices:
		if v, ok := cc.HttpContext.Services.ResolveType(p.Type); ok {
			return v, true, nil
		}
		return nil, false, fmt.Errorf("no service for type %s has been registered", p.Type)
	case p.Source == SourceBody:
		return bindBody(cc, p)
	case isComplexType(p.Type) && (p.Source == SourceAny || p.Source == SourceQuery || p.Source == SourceForm):
		if p.Source == SourceAny && hasJsonBody(cc.HttpContext.Request) {
			return bindBody(cc, p)
		}
		return bindComplex(cc, providers, p)
	}
	values := lookupValues(providers, p.Source, p.Name)
	if len(values) == 0 {
		return nil, false, nil
	}
	v, err := ConvertValues(values, p.Type)
	if err != nil {
		cc.ModelState.SetModelValue(p.Name, values, strings.Join(values, ","))
		cc.ModelState.AddModelError(p.Name, fmt.Sprintf("The value '%s' is not valid for %s.", strings.Join(values, ","), p.Name))
		return nil, false, nil
	}
	cc.ModelState.SetModelValue(p.Name, values, strings.Join(values, ","))
	cc.ModelState.MarkFieldValid(p.Name)
	return v, true, nil
}

var anySourceOrder = []ParameterSource{SourceRoute, SourceQuery, SourceForm}

func lookupValues(providers map[ParameterSource]ValueProvider, source ParameterSource, key string) []string {
	if source != SourceAny {
		if vp, ok := providers[source]; ok {
			return vp.GetValue(key)
		}
		return nil
	}
	for _, s := range anySourceOrder {
		if vp, ok := providers[s]; ok {
			if v := vp.GetValue(key); len(v) > 0 {
				return v
			}
		}
	}
	return nil
}

func hasJsonBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return strings.HasSuffix(mt, "json")
}

func bindBody(cc *ControllerContext, p ParameterDescriptor) (any, bool, error) {
	r := cc.HttpContext.Request
	data, err := readBody(r)
	if err != nil {
		return nil, false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		cc.ModelState.AddModelError(p.Name, "A non-empty request body is required.")
		return nil, false, nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasSuffix(mt, "json") {
			return nil, false, fmt.Errorf("unsupported content type %q for parameter %s", ct, p.Name)
		}
	}
	ptr := reflect.New(p.Type)
	if err = json.Unmarshal(data, ptr.Interface()); err != nil {
		cc.ModelState.AddModelException(p.Name, err)
		return nil, false, nil
	}
	v := ptr.Elem().Interface()
	ValidateModel(cc.ModelState, v)
	return v, true, nil
}

func bindComplex(cc *ControllerContext, providers map[ParameterSource]ValueProvider, p ParameterDescriptor) (any, bool, error) {
	st := p.Type
	isPtr := st.Kind() == reflect.Ptr
	if isPtr {
		st = st.Elem()
	}
	ptr := reflect.New(st)
	found := false
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("form"); tag != "" && tag != "-" {
			name = tag
		}
		values := lookupValues(providers, p.Source, name)
		if len(values) == 0 {
			continue
		}
		found = true
		key := p.Name + "." + f.Name
		v, err := ConvertValues(values, f.Type)
		cc.ModelState.SetModelValue(key, values, strings.Join(values, ","))
		if err != nil {
			cc.ModelState.AddModelError(key, fmt.Sprintf("The value '%s' is not valid for %s.", strings.Join(values, ","), f.Name))
			continue
		}
		ptr.Elem().Field(i).Set(reflect.ValueOf(v))
	}
	if !found {
		return nil, false, nil
	}
	ValidateModel(cc.ModelState, ptr.Interface())
	if isPtr {
		return ptr.Interface(), true, nil
	}
	return ptr.Elem().Interface(), true, nil
}

// ValidateModel validates a model using its `valid` struct tags - recording errors in model state
func ValidateModel(ms *ModelStateDictionary, v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	if ok, err := govalidator.ValidateStruct(rv.Interface()); !ok && err != nil {
		byField := govalidator.ErrorsByField(err)
		if len(byField) == 0 {
			ms.AddModelException("", err)
			return
		}
		for field, msg := range byField {
			ms.AddModelError(field, msg)
		}
	}
}

var (
	decimalType       = reflect.TypeFor[decimal.Decimal]()
	timeType          = reflect.TypeFor[time.Time]()
	durationType      = reflect.TypeFor[time.Duration]()
	textUnmarshalType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

func isComplexType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != decimalType && t != timeType &&
		!reflect.PointerTo(t).Implements(textUnmarshalType)
}

// ConvertValues converts raw string values to the supplied type
//
// slice types receive all values, other types receive the first value
func ConvertValues(values []string, t reflect.Type) (any, error) {
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		result := reflect.MakeSlice(t, 0, len(values))
		for _, s := range values {
			v, err := ConvertValue(s, t.Elem())
			if err != nil {
				return nil, err
			}
			result = reflect.Append(result, reflect.ValueOf(v))
		}
		return result.Interface(), nil
	}
	if len(values) == 0 {
		return reflect.Zero(t).Interface(), nil
	}
	return ConvertValue(values[0], t)
}

// ConvertValue converts a raw string value to the supplied type
func ConvertValue(s string, t reflect.Type) (any, error) {
	if t.Kind() == reflect.Ptr {
		v, err := ConvertValue(s, t.Elem())
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(reflect.ValueOf(v))
		return ptr.Interface(), nil
	}
	switch t {
	case decimalType:
		return decimal.NewFromString(s)
	case timeType:
		for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
			if v, err := time.Parse(layout, s); err == nil {
				return v, nil
			}
		}
		return nil, fmt.Errorf("invalid time %q", s)
	case durationType:
		return time.ParseDuration(s)
	}
	if reflect.PointerTo(t).Implements(textUnmarshalType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
	rv := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		rv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		rv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		rv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return nil, err
		}
		rv.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		rv.SetBytes([]byte(s))
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, fmt.Errorf("cannot convert %q to %s", s, t)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("cannot convert %q to %s", s, t)
	}
	return rv.Interface(), nil
}
