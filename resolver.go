package ioc

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/junioryono/ioc/internal/reflection"
	"go.uber.org/zap"
)

// resolution tracks one top-level Make call: the chain of keys currently
// being resolved and whether the container lock is held for it.
type resolution struct {
	id       string
	stack    []Key
	inflight map[Key]bool
	running  bool

	// goroutine is set once caller code first runs for this resolution.
	goroutine int64
}

func newResolution() *resolution {
	return &resolution{
		id:       uuid.NewString(),
		inflight: make(map[Key]bool),
		running:  true,
	}
}

func (r *resolution) active() bool {
	return r != nil && r.running
}

func (r *resolution) push(key Key) {
	r.stack = append(r.stack, key)
	r.inflight[key] = true
}

func (r *resolution) pop() {
	key := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.inflight, key)
}

// cycle returns the chain from the first occurrence of key back to key.
func (r *resolution) cycle(key Key) []Key {
	for i, k := range r.stack {
		if k == key {
			path := make([]Key, 0, len(r.stack)-i+1)
			path = append(path, r.stack[i:]...)
			return append(path, key)
		}
	}
	return []Key{key, key}
}

// Make resolves key into an instance.
//
// Stored instances and cached shared instances are returned as they are.
// Anything else is built from its descriptor: factories are invoked, values
// returned, aliases resolved, and types autowired by resolving each
// constructor parameter in turn. Instances of shared keys are cached under
// the requested key.
func (c *Container) Make(key Key) (any, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	if c.frame.active() {
		return c.resolve(key)
	}

	if !c.core.mu.TryLock() {
		if view, ok := c.reentered(); ok {
			return view.resolve(key)
		}
		c.core.mu.Lock()
	}

	frame := newResolution()
	instance, err := c.run(frame, key)

	// The lock is released here, so the callback may use the container.
	if err != nil {
		c.core.logger.Debug("resolution failed",
			zap.String("resolution", frame.id),
			zap.String("key", formatKey(key)),
			zap.Error(err),
		)
		if c.core.options.onError != nil {
			c.core.options.onError(key, err)
		}
		return nil, err
	}

	return instance, nil
}

// run resolves key as a new top-level resolution. The caller holds the
// lock; run releases it.
func (c *Container) run(frame *resolution, key Key) (any, error) {
	c.core.active = frame
	defer func() {
		frame.running = false
		c.core.active = nil
		c.core.owner.Store(0)
		c.core.mu.Unlock()
	}()

	view := &Container{core: c.core, frame: frame}
	return view.resolve(key)
}

// resolve returns the cached instance for key or builds one. The lock is
// held and c.frame is active.
func (c *Container) resolve(key Key) (any, error) {
	core := c.core

	if instance, ok := core.cache.get(key); ok {
		core.metrics.resolved(outcomeCached)
		return instance, nil
	}

	if c.frame.inflight[key] {
		core.metrics.resolved(outcomeFailed)
		return nil, CircularDependencyError{Path: c.frame.cycle(key)}
	}

	if limit := core.options.maxDepth; limit > 0 && len(c.frame.stack) >= limit {
		core.metrics.resolved(outcomeFailed)
		return nil, MaxDepthError{Key: key, MaxDepth: limit}
	}

	start := time.Now()
	c.frame.push(key)
	instance, err := c.build(key)
	c.frame.pop()

	if err != nil {
		core.metrics.resolved(outcomeFailed)
		return nil, err
	}

	if core.registry.isShared(key) {
		instance = core.cache.memoize(key, instance)
		core.lifecycle.track(key, instance)
		core.logger.Debug("shared instance cached",
			zap.String("resolution", c.frame.id),
			zap.String("key", formatKey(key)),
		)
	}

	core.metrics.resolved(outcomeBuilt)
	if core.options.onResolved != nil {
		c.claim()
		core.options.onResolved(key, instance, time.Since(start))
	}

	return instance, nil
}

// build produces a new instance for key from its immediate descriptor.
func (c *Container) build(key Key) (any, error) {
	switch d := c.core.registry.concreteFor(key, c.core.cache).(type) {
	case Factory:
		c.core.metrics.built(buildFactory)
		return c.invoke(key, d)
	case Value:
		c.core.metrics.built(buildValue)
		c.core.lifecycle.owned(d.V)
		return d.V, nil
	case Alias:
		c.core.metrics.built(buildAlias)
		return c.resolve(d.Key)
	case autowire:
		c.core.metrics.built(buildAutowire)
		return c.autowire(key, d.key)
	default:
		return nil, fmt.Errorf("unknown descriptor %T for %s", d, formatKey(key))
	}
}

// invoke calls a factory, turning a panic into a ConstructorPanicError.
func (c *Container) invoke(key Key, fn Factory) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ConstructorPanicError{Key: key, Panic: r, Stack: debug.Stack()}
		}
	}()

	c.claim()
	return fn(c)
}

// claim records the goroutine running this resolution before caller code
// runs, so calls that code makes on another view of the container join the
// resolution instead of waiting on its lock.
func (c *Container) claim() {
	if c.frame.goroutine == 0 {
		c.frame.goroutine = goroutineID()
		c.core.owner.Store(c.frame.goroutine)
	}
}

// autowire constructs the type named by target. key is the key that was
// requested and is only used in error messages.
func (c *Container) autowire(key, target Key) (any, error) {
	t, err := c.typeFor(target)
	if err != nil {
		return nil, err
	}

	info, err := c.core.introspector.Inspect(t)
	if err != nil {
		return nil, BindingResolutionError{Key: key, Type: t, Cause: err}
	}

	if !info.Instantiable {
		return nil, BindingResolutionError{Key: key, Type: t, Cause: ErrNotInstantiable}
	}

	args := make([]reflect.Value, len(info.Parameters))
	for i, param := range info.Parameters {
		value, err := c.dependency(t, param)
		if err != nil {
			return nil, err
		}

		arg, ok := reflection.Assign(param.Type, value)
		if !ok {
			return nil, TypeMismatchError{
				Expected: param.Type,
				Actual:   reflect.TypeOf(value),
				Context:  fmt.Sprintf("parameter %s of %s", param.Name, formatType(t)),
			}
		}
		args[i] = arg
	}

	return c.construct(target, info, args)
}

// construct invokes the constructor, recovering panics.
func (c *Container) construct(key Key, info *TypeInfo, args []reflect.Value) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = ConstructorPanicError{Key: key, Panic: r, Stack: debug.Stack()}
		}
	}()

	if info.HasConstructor() {
		c.claim()
	}
	value, err := reflection.Call(info, args)
	if err != nil {
		return nil, ConstructorError{Type: info.Type, Cause: err}
	}

	return value.Interface(), nil
}

// dependency computes one constructor argument for the declaring type:
// a contextual override by type, then resolution of the type (falling back
// to the default on failure), then a contextual override by name, then the
// default.
func (c *Container) dependency(declaring reflect.Type, param Parameter) (any, error) {
	lookup := c.core.introspector.Lookup

	if param.Nominal {
		if override, ok := c.core.registry.contextualFor(declaring, param.Type, lookup); ok {
			return c.override(declaring, override)
		}

		value, err := c.resolve(param.Type)
		if err != nil {
			if param.Optional {
				c.core.logger.Debug("using default for optional parameter",
					zap.String("resolution", c.frame.id),
					zap.String("type", formatType(declaring)),
					zap.String("parameter", param.Name),
					zap.Error(err),
				)
				return param.Default, nil
			}
			return nil, parameterError(declaring, param, err)
		}
		return value, nil
	}

	if override, ok := c.core.registry.contextualFor(declaring, param.Name, lookup); ok {
		return c.override(declaring, override)
	}

	if param.Optional {
		return param.Default, nil
	}

	return nil, BindingResolutionError{
		Key:       declaring,
		Type:      declaring,
		Parameter: param.Name,
		Cause:     ErrUnresolvable,
	}
}

// parameterError names the parameter when its own type is not
// instantiable. Any other failure is returned unchanged.
func parameterError(declaring reflect.Type, param Parameter, err error) error {
	var bre BindingResolutionError
	if !errors.As(err, &bre) || bre.Parameter != "" || bre.Type != param.Type {
		return err
	}
	return BindingResolutionError{
		Key:       declaring,
		Type:      declaring,
		Parameter: param.Name,
		Cause:     err,
	}
}

// override produces the value of a contextual override.
func (c *Container) override(declaring reflect.Type, override Concrete) (any, error) {
	switch d := override.(type) {
	case Factory:
		return c.invoke(declaring, d)
	case Value:
		return d.V, nil
	case Alias:
		return c.resolve(d.Key)
	default:
		return nil, fmt.Errorf("unknown contextual override %T for %s", d, formatType(declaring))
	}
}

// typeFor maps a key to the type it names.
func (c *Container) typeFor(key Key) (reflect.Type, error) {
	switch k := key.(type) {
	case reflect.Type:
		return k, nil
	case string:
		if t, ok := c.core.introspector.Lookup(k); ok {
			return t, nil
		}
	}
	return nil, TypeNotFoundError{Key: key}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves key and asserts the instance to T.
//
//	mailer, err := ioc.Resolve[*Mailer](c, "mailer")
func Resolve[T any](c *Container, key Key) (T, error) {
	var zero T

	instance, err := c.Make(key)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: TypeOf[T](),
			Actual:   reflect.TypeOf(instance),
			Context:  fmt.Sprintf("resolving %s", formatKey(key)),
		}
	}

	return typed, nil
}

// ResolveType resolves the type token of T.
func ResolveType[T any](c *Container) (T, error) {
	return Resolve[T](c, TypeOf[T]())
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, key Key) T {
	instance, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return instance
}
