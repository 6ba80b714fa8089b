package mvc

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"
)

// Services is the service provider used by the host and by controllers
//
// instances can be registered by name or by type - resolving by type also finds any
// registered instance that implements a requested interface type
type Services struct {
	mu    sync.RWMutex
	named map[string]any
	typed map[reflect.Type]any
	order []reflect.Type
}

// NewServices creates a new empty service provider
func NewServices() *Services {
	return &Services{
		named: make(map[string]any),
		typed: make(map[reflect.Type]any),
	}
}

// Register registers an instance by name
func (s *Services) Register(name string, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.named[name] = instance
}

// Resolve resolves a named instance (nil if not registered)
func (s *Services) Resolve(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.named[name]
}

// RegisterType registers an instance against the supplied type
func (s *Services) RegisterType(t reflect.Type, instance any) {
	if t == nil {
		panic("service type cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.typed[t]; !exists {
		s.order = append(s.order, t)
	}
	s.typed[t] = instance
}

// ResolveType resolves an instance for the supplied type
//
// an exact type registration is preferred, otherwise the first registered instance (in order
// of registration) that is assignable to the type is returned
func (s *Services) ResolveType(t reflect.Type) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.typed[t]; ok {
		return v, true
	}
	for _, rt := range s.order {
		if v := s.typed[rt]; v != nil && reflect.TypeOf(v).AssignableTo(t) {
			return v, true
		}
	}
	for _, v := range s.named {
		if v != nil && reflect.TypeOf(v).AssignableTo(t) {
			return v, true
		}
	}
	return nil, false
}

// ResolveAll resolves all instances (named or typed) that implement the interface pointed to by targetType
//
// example:
//
//	filters, err := services.ResolveAll((*AuthorizationFilter)(nil))
func (s *Services) ResolveAll(targetType any) ([]any, error) {
	tt := reflect.TypeOf(targetType)
	if tt == nil || tt.Kind() != reflect.Ptr || tt.Elem().Kind() != reflect.Interface {
		return nil, errors.New("targetType must be a pointer to an interface")
	}
	tt = tt.Elem()
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]any, 0)
	for _, rt := range s.order {
		if v := s.typed[rt]; v != nil && reflect.TypeOf(v).Implements(tt) {
			results = append(results, v)
		}
	}
	for _, v := range s.named {
		if v != nil && reflect.TypeOf(v).Implements(tt) {
			results = append(results, v)
		}
	}
	return results, nil
}

// Clone creates a copy of the service provider - registrations on the copy do not affect the original
func (s *Services) Clone() *Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Services{
		named: maps.Clone(s.named),
		typed: maps.Clone(s.typed),
		order: append([]reflect.Type{}, s.order...),
	}
}

// Provide registers an instance against the generic type T
func Provide[T any](s *Services, instance T) {
	s.RegisterType(reflect.TypeFor[T](), instance)
}

// Get resolves an instance of the generic type T
func Get[T any](s *Services) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	if v, ok := s.ResolveType(reflect.TypeFor[T]()); ok {
		if tv, ok := v.(T); ok {
			return tv, true
		}
	}
	return zero, false
}

// MustGet resolves an instance of the generic type T - panicking if it is not registered
func MustGet[T any](s *Services) T {
	if v, ok := Get[T](s); ok {
		return v
	}
	panic(fmt.Sprintf("no service for type %s has been registered", reflect.TypeFor[T]()))
}
