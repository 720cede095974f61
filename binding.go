package ioc

import (
	"reflect"
)

// Key names something that can be resolved. Keys are compared with ==, so
// they must be comparable: strings, reflect.Type tokens (see TypeOf) and
// other comparable values all work.
type Key = any

// TypeOf returns the type token for T.
//
//	c.Bind(ioc.TypeOf[Logger](), ioc.To(ioc.TypeOf[*FileLogger]()))
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Concrete describes how a key is produced. It is a closed set:
// Alias, Factory and Value. A binding without a Concrete autowires the key
// itself.
type Concrete interface {
	isConcrete()
}

// Alias resolves another key instead, honouring that key's own bindings,
// sharing and cache.
type Alias struct {
	Key Key
}

// Factory builds an instance. It receives the container performing the
// resolution and must resolve any further dependencies through it.
// Factories are never autowired and their errors are returned unmodified.
type Factory func(c *Container) (any, error)

// Value is a pre-built instance returned as-is.
type Value struct {
	V any
}

func (Alias) isConcrete()   {}
func (Factory) isConcrete() {}
func (Value) isConcrete()   {}

// autowire is the self-reference descriptor: build the key as a type.
type autowire struct {
	key Key
}

func (autowire) isConcrete() {}

// BindOption configures a binding.
type BindOption interface {
	apply(*bindOptions)
}

// bindOptions holds binding configuration.
type bindOptions struct {
	concrete Concrete
	shared   bool
}

// bindOptionFunc adapts a function to BindOption.
type bindOptionFunc func(*bindOptions)

func (f bindOptionFunc) apply(opts *bindOptions) {
	f(opts)
}

// To binds the key to another key. A Concrete passed here is used as-is.
func To(key Key) BindOption {
	return bindOptionFunc(func(opts *bindOptions) {
		if c, ok := key.(Concrete); ok {
			opts.concrete = c
			return
		}
		opts.concrete = Alias{Key: key}
	})
}

// ToFactory binds the key to a factory.
func ToFactory(fn Factory) BindOption {
	return bindOptionFunc(func(opts *bindOptions) {
		opts.concrete = fn
	})
}

// ToValue binds the key to a pre-built value.
func ToValue(v any) BindOption {
	return bindOptionFunc(func(opts *bindOptions) {
		opts.concrete = Value{V: v}
	})
}

// Shared memoizes the first instance resolved for the key.
func Shared() BindOption {
	return bindOptionFunc(func(opts *bindOptions) {
		opts.shared = true
	})
}

// validateKey rejects keys that cannot be stored in a map.
func validateKey(key Key) error {
	if key == nil {
		return KeyError{Key: key, Cause: ErrNilKey}
	}
	// Value.Comparable looks through interface fields, which Type.Comparable
	// cannot.
	if !reflect.ValueOf(key).Comparable() {
		return KeyError{Key: key, Cause: ErrKeyNotComparable}
	}
	return nil
}

// validateConcrete rejects descriptors that cannot be resolved.
func validateConcrete(c Concrete) error {
	switch d := c.(type) {
	case Factory:
		if d == nil {
			return ErrNilFactory
		}
	case Alias:
		return validateKey(d.Key)
	}
	return nil
}
