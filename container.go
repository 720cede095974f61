package ioc

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/junioryono/ioc/internal/reflection"
	"go.uber.org/zap"
)

// Container maps keys to construction strategies and resolves them into
// fully wired instances.
//
// A Container is safe for concurrent use: one lock guards the registry and
// the instance cache together, so a shared key is built at most once.
// Factories receive a Container bound to the resolution in progress; calls
// made through it do not take the lock again. That Container must not be
// retained past the factory call or handed to other goroutines. Calls a
// factory or constructor makes on any other Container value for the same
// container, on the goroutine running the resolution, join it as well.
type Container struct {
	core  *core
	frame *resolution
}

// core is the state every view of a container shares.
type core struct {
	mu sync.Mutex

	// owner is the id of the goroutine whose resolution holds mu while it
	// runs caller code, or zero. active is that resolution; only the
	// owner reads it.
	owner  atomic.Int64
	active *resolution

	id           string
	registry     *registry
	cache        *instanceCache
	lifecycle    *lifecycle
	introspector Introspector
	logger       *zap.Logger
	metrics      *metrics
	options      *options
}

// New creates an empty container.
func New(opts ...Option) *Container {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}

	if o.introspector == nil {
		o.introspector = reflection.New()
	}

	id := uuid.NewString()
	logger := o.logger.With(zap.String("container", id))

	return &Container{
		core: &core{
			id:           id,
			registry:     newRegistry(),
			cache:        newInstanceCache(),
			lifecycle:    newLifecycle(),
			introspector: o.introspector,
			logger:       logger,
			metrics:      newMetrics(o.registerer, logger),
			options:      o,
		},
	}
}

// ID returns the container's unique identifier.
func (c *Container) ID() string {
	return c.core.id
}

// Introspector returns the container's type introspector.
func (c *Container) Introspector() Introspector {
	return c.core.introspector
}

// lock acquires the container lock unless this view, or the calling
// goroutine, already runs inside a resolution that holds it. The returned
// func releases what was acquired.
func (c *Container) lock() func() {
	if c.frame.active() {
		return func() {}
	}
	if c.core.mu.TryLock() {
		return c.core.mu.Unlock
	}
	if _, ok := c.reentered(); ok {
		return func() {}
	}
	c.core.mu.Lock()
	return c.core.mu.Unlock
}

// reentered returns a view bound to the active resolution when the calling
// goroutine is the one running it.
func (c *Container) reentered() (*Container, bool) {
	owner := c.core.owner.Load()
	if owner == 0 || owner != goroutineID() {
		return nil, false
	}
	return &Container{core: c.core, frame: c.core.active}, true
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers how key is resolved. Without To, ToFactory or ToValue the
// key is autowired as a type. Binding a key again replaces its descriptor
// and shared flag; an instance already cached for it stays cached until
// Forget is called.
//
//	c.Bind(ioc.TypeOf[*Stack]())
//	c.Bind("alpha", ioc.To(ioc.TypeOf[*Stack]()), ioc.Shared())
//	c.Bind("beta", ioc.To("alpha"))
func (c *Container) Bind(key Key, opts ...BindOption) error {
	if err := validateKey(key); err != nil {
		return err
	}

	o := &bindOptions{}
	for _, opt := range opts {
		opt.apply(o)
	}

	if err := validateConcrete(o.concrete); err != nil {
		return KeyError{Key: key, Cause: err}
	}

	defer c.lock()()

	if c.core.cache.has(key) {
		c.core.logger.Debug("rebinding key with a cached instance", zap.String("key", formatKey(key)))
	}

	c.core.registry.bind(key, o.concrete, o.shared)
	c.core.logger.Debug("key bound",
		zap.String("key", formatKey(key)),
		zap.String("concrete", describe(key, o.concrete)),
		zap.Bool("shared", o.shared),
	)
	return nil
}

// Singleton is Bind with Shared.
func (c *Container) Singleton(key Key, opts ...BindOption) error {
	return c.Bind(key, append(opts, Shared())...)
}

// Instance stores a pre-built value under key. Resolving key returns it
// verbatim without constructing anything.
func (c *Container) Instance(key Key, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	defer c.lock()()

	c.core.cache.put(key, value)
	c.core.lifecycle.owned(value)
	c.core.logger.Debug("instance stored", zap.String("key", formatKey(key)))
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// IsBound reports whether key has a binding or a stored instance.
func (c *Container) IsBound(key Key) bool {
	if validateKey(key) != nil {
		return false
	}

	defer c.lock()()
	return c.core.registry.has(key) || c.core.cache.has(key)
}

// IsShared reports whether key is bound as shared.
func (c *Container) IsShared(key Key) bool {
	if validateKey(key) != nil {
		return false
	}

	defer c.lock()()
	return c.core.registry.isShared(key)
}

// Resolved reports whether key has a cached instance.
func (c *Container) Resolved(key Key) bool {
	if validateKey(key) != nil {
		return false
	}

	defer c.lock()()
	return c.core.cache.has(key)
}

// Keys returns every bound key and every key with a cached instance,
// sorted by their display form.
func (c *Container) Keys() []Key {
	defer c.lock()()

	keys := c.core.registry.keys()
	for k := range c.core.cache.entries {
		if !c.core.registry.has(k) {
			keys = append(keys, k)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		return formatKey(keys[i]) < formatKey(keys[j])
	})
	return keys
}

// CacheStatistics returns instance cache statistics.
func (c *Container) CacheStatistics() CacheStatistics {
	defer c.lock()()
	return c.core.cache.statistics()
}

// ── Removal ───────────────────────────────────────────────────────────────────

// Forget drops the cached instance for key. Its binding, if any, remains,
// so a shared key is rebuilt on its next resolution.
func (c *Container) Forget(key Key) {
	if validateKey(key) != nil {
		return
	}

	defer c.lock()()
	c.core.cache.remove(key)
}

// Unbind removes the binding and the cached instance for key.
func (c *Container) Unbind(key Key) {
	if validateKey(key) != nil {
		return
	}

	defer c.lock()()
	c.core.registry.remove(key)
	c.core.cache.remove(key)
}

// Flush drops every binding, contextual override and cached instance.
// Definitions held by the introspector are kept.
func (c *Container) Flush() {
	defer c.lock()()
	c.core.registry.clear()
	c.core.cache.clear()
	c.core.logger.Debug("container flushed")
}

// Close disposes every shared instance the container built that implements
// Disposable or DisposableWithContext, most recently built first, and
// forgets all cached instances. Values stored with Instance are forgotten
// but not closed. Bindings remain, so the container can be used again.
func (c *Container) Close(ctx context.Context) error {
	unlock := c.lock()
	c.core.cache.clear()
	unlock()

	pending := c.core.lifecycle.len()
	err := c.core.lifecycle.dispose(ctx)
	c.core.logger.Debug("container closed",
		zap.Int("disposed", pending),
		zap.Error(err),
	)
	return err
}

// describe renders a descriptor for logs.
func describe(key Key, concrete Concrete) string {
	switch d := concrete.(type) {
	case nil:
		return "self:" + formatKey(key)
	case Alias:
		return "alias:" + formatKey(d.Key)
	case Factory:
		return "factory"
	case Value:
		return "value"
	default:
		return "unknown"
	}
}
