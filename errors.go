package ioc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.
// Match them with errors.Is.

var (
	// Resolution errors.
	ErrTypeNotFound       = errors.New("type not found")
	ErrNotInstantiable    = errors.New("type is not instantiable")
	ErrUnresolvable       = errors.New("parameter has no default value")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrMaxDepth           = errors.New("maximum resolution depth exceeded")

	// Registration errors.
	ErrNilKey           = errors.New("key cannot be nil")
	ErrKeyNotComparable = errors.New("key must be comparable")
	ErrNilFactory       = errors.New("factory cannot be nil")
	ErrNoSelector       = errors.New("contextual binding needs a selector")
	ErrNoDefiner        = errors.New("introspector does not support definitions")
)

var (
	_ error = TypeNotFoundError{}
	_ error = BindingResolutionError{}
	_ error = EntryNotFoundError{}
	_ error = CircularDependencyError{}
	_ error = MaxDepthError{}
	_ error = ConstructorError{}
	_ error = ConstructorPanicError{}
	_ error = TypeMismatchError{}
	_ error = DefinitionError{}
	_ error = KeyError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// TypeNotFoundError indicates the introspector cannot locate the type a key
// names. It is never recovered by the resolver.
type TypeNotFoundError struct {
	Key Key
}

func (e TypeNotFoundError) Error() string {
	return fmt.Sprintf("type %s not found", formatKey(e.Key))
}

func (e TypeNotFoundError) Unwrap() error {
	return ErrTypeNotFound
}

// BindingResolutionError is returned when a type cannot be built: it is not
// instantiable, or one of its constructor parameters cannot be supplied.
// When Parameter is set, Type is the type declaring it.
type BindingResolutionError struct {
	Key       Key
	Type      reflect.Type
	Parameter string // Empty when the type itself cannot be built
	Cause     error
}

func (e BindingResolutionError) Error() string {
	switch {
	case e.Parameter != "" && (e.Cause == nil || errors.Is(e.Cause, ErrUnresolvable)):
		return fmt.Sprintf("parameter %s has no default value in %s", e.Parameter, formatType(e.Type))
	case e.Parameter != "":
		return fmt.Sprintf("cannot resolve parameter %s of %s: %v", e.Parameter, formatType(e.Type), e.Cause)
	case e.Cause == nil || errors.Is(e.Cause, ErrNotInstantiable):
		return fmt.Sprintf("%s is not instantiable", formatKey(e.Key))
	default:
		return fmt.Sprintf("cannot build %s: %v", formatKey(e.Key), e.Cause)
	}
}

func (e BindingResolutionError) Unwrap() error {
	return e.Cause
}

// EntryNotFoundError is returned by Get when nothing is registered for an id.
type EntryNotFoundError struct {
	Key Key
}

func (e EntryNotFoundError) Error() string {
	return fmt.Sprintf("no entry was found for %s", formatKey(e.Key))
}

func (e EntryNotFoundError) Unwrap() error {
	return ErrEntryNotFound
}

// CircularDependencyError reports a key that was requested again while it
// was still being resolved. Path starts and ends with that key.
type CircularDependencyError struct {
	Path []Key
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for i, key := range e.Path {
		b.WriteString(fmt.Sprintf("    %s", formatKey(key)))
		if i == len(e.Path)-1 {
			b.WriteString(" (cycle)")
		}
		b.WriteString("\n")
		if i < len(e.Path)-1 {
			b.WriteString("      ↓\n")
		}
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Use an interface to break the dependency\n")
	b.WriteString("  • Use a factory for lazy initialization\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Unwrap() error {
	return ErrCircularDependency
}

// MaxDepthError is returned when a resolution chain grows past the
// configured depth without repeating a key.
type MaxDepthError struct {
	Key      Key
	MaxDepth int
}

func (e MaxDepthError) Error() string {
	return fmt.Sprintf("resolving %s exceeded the maximum depth of %d", formatKey(e.Key), e.MaxDepth)
}

func (e MaxDepthError) Unwrap() error {
	return ErrMaxDepth
}

// ConstructorError wraps an error returned by a registered constructor.
type ConstructorError struct {
	Type  reflect.Type
	Cause error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("constructor for %s failed: %v", formatType(e.Type), e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor or factory panicked.
type ConstructorPanicError struct {
	Key   Key
	Panic any
	Stack []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructing %s panicked: %v\n", formatKey(e.Key), e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// TypeMismatchError indicates a value cannot be used where a type is expected.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "parameter x of *Alpha", "type assertion", etc.
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// DefinitionError wraps an introspector rejection of a constructor.
type DefinitionError struct {
	Target any
	Cause  error
}

func (e DefinitionError) Error() string {
	return fmt.Sprintf("failed to define %T: %v", e.Target, e.Cause)
}

func (e DefinitionError) Unwrap() error {
	return e.Cause
}

// KeyError reports an unusable binding key.
type KeyError struct {
	Key   Key
	Cause error
}

func (e KeyError) Error() string {
	return fmt.Sprintf("invalid key %s: %v", formatKey(e.Key), e.Cause)
}

func (e KeyError) Unwrap() error {
	return e.Cause
}

// IsTypeNotFound reports whether err means a key names no known type.
func IsTypeNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound)
}

// IsBindingResolution reports whether err is a BindingResolutionError.
func IsBindingResolution(err error) bool {
	var bre BindingResolutionError
	return errors.As(err, &bre)
}

// IsNotFound reports whether err means nothing is registered for a key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

// IsCircular reports whether err is a circular dependency error.
func IsCircular(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

// formatKey formats a binding key for error messages.
func formatKey(key Key) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case reflect.Type:
		return formatType(k)
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf("%v", k)
	}
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
