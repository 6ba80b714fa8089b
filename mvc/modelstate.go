package mvc

import (
	"strings"
)

// ValidationState is the validation state of a model state entry
type ValidationState int

const (
	Unvalidated ValidationState = iota
	Valid
	Invalid
	Skipped
)

// ModelError is a single model state error
type ModelError struct {
	ErrorMessage string
	Err          error
}

// ModelStateEntry is the state of a single bound key
type ModelStateEntry struct {
	RawValue        any
	AttemptedValue  string
	Errors          []ModelError
	ValidationState ValidationState
}

// TooManyModelErrorsMessage is the error message recorded when the maximum number of model errors is reached
const TooManyModelErrorsMessage = "The maximum number of allowed model errors has been reached."

// ModelStateDictionary records the binding and validation state of an action
type ModelStateDictionary struct {
	entries       map[string]*ModelStateEntry
	keys          []string
	maxErrors     int
	errorCount    int
	hasReachedMax bool
}

// NewModelStateDictionary creates a new model state dictionary with the maximum number of allowed errors
func NewModelStateDictionary(maxErrors int) *ModelStateDictionary {
	return &ModelStateDictionary{
		entries:   make(map[string]*ModelStateEntry),
		maxErrors: maxErrors,
	}
}

func (m *ModelStateDictionary) entry(key string) *ModelStateEntry {
	if e, ok := m.lookup(key); ok {
		return e
	}
	e := &ModelStateEntry{}
	m.entries[key] = e
	m.keys = append(m.keys, key)
	return e
}

func (m *ModelStateDictionary) lookup(key string) (*ModelStateEntry, bool) {
	if e, ok := m.entries[key]; ok {
		return e, true
	}
	for k, e := range m.entries {
		if strings.EqualFold(k, key) {
			return e, true
		}
	}
	return nil, false
}

// AddModelError adds an error message for a key
//
// returns false if the maximum number of errors has been reached (the error is not added)
func (m *ModelStateDictionary) AddModelError(key string, message string) bool {
	return m.addError(key, ModelError{ErrorMessage: message})
}

// AddModelException adds an error for a key
func (m *ModelStateDictionary) AddModelException(key string, err error) bool {
	return m.addError(key, ModelError{ErrorMessage: err.Error(), Err: err})
}

func (m *ModelStateDictionary) addError(key string, me ModelError) bool {
	if m.errorCount >= m.maxErrors-1 {
		if !m.hasReachedMax {
			m.hasReachedMax = true
			e := m.entry("")
			e.Errors = append(e.Errors, ModelError{ErrorMessage: TooManyModelErrorsMessage})
			e.ValidationState = Invalid
			m.errorCount++
		}
		return false
	}
	e := m.entry(key)
	e.Errors = append(e.Errors, me)
	e.ValidationState = Invalid
	m.errorCount++
	return true
}

// SetModelValue sets the raw and attempted value of a key
func (m *ModelStateDictionary) SetModelValue(key string, raw any, attempted string) {
	e := m.entry(key)
	e.RawValue = raw
	e.AttemptedValue = attempted
}

// MarkFieldValid marks a key as valid (if it has no errors)
func (m *ModelStateDictionary) MarkFieldValid(key string) {
	e := m.entry(key)
	if len(e.Errors) == 0 {
		e.ValidationState = Valid
	}
}

// IsValid is true when there are no model errors
func (m *ModelStateDictionary) IsValid() bool {
	return m.errorCount == 0
}

// ErrorCount is the total number of model errors
func (m *ModelStateDictionary) ErrorCount() int {
	return m.errorCount
}

// HasReachedMaxErrors is true when the maximum number of errors has been reached
func (m *ModelStateDictionary) HasReachedMaxErrors() bool {
	return m.hasReachedMax
}

// MaxAllowedErrors is the maximum number of errors allowed
func (m *ModelStateDictionary) MaxAllowedErrors() int {
	return m.maxErrors
}

// Keys returns the keys in the order they were first added
func (m *ModelStateDictionary) Keys() []string {
	return append([]string{}, m.keys...)
}

// Get gets the entry for a key (case-insensitive)
func (m *ModelStateDictionary) Get(key string) (*ModelStateEntry, bool) {
	return m.lookup(key)
}

// ErrorMessages returns all error messages for a key
func (m *ModelStateDictionary) ErrorMessages(key string) []string {
	e, ok := m.lookup(key)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(e.Errors))
	for _, me := range e.Errors {
		result = append(result, me.ErrorMessage)
	}
	return result
}

// Merge adds all the entries of another model state dictionary
func (m *ModelStateDictionary) Merge(other *ModelStateDictionary) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		oe := other.entries[k]
		if oe.RawValue != nil || oe.AttemptedValue != "" {
			m.SetModelValue(k, oe.RawValue, oe.AttemptedValue)
		}
		for _, me := range oe.Errors {
			if me.ErrorMessage == TooManyModelErrorsMessage && k == "" {
				continue
			}
			m.addError(k, me)
		}
	}
}

// Clear removes all entries
func (m *ModelStateDictionary) Clear() {
	m.entries = make(map[string]*ModelStateEntry)
	m.keys = nil
	m.errorCount = 0
	m.hasReachedMax = false
}
