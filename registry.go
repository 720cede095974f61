package ioc

import (
	"reflect"
	"slices"

	"github.com/junioryono/ioc/internal/reflection"
)

// binding is a registered descriptor. A nil concrete autowires the key.
type binding struct {
	concrete Concrete
	shared   bool
}

// registry maps keys to descriptors and holds the contextual overrides.
// Callers hold the container lock.
type registry struct {
	bindings map[Key]binding

	// consumer -> selector (reflect.Type or parameter name) -> override
	contextual map[Key]map[any]Concrete

	// consumers registered by name, sorted
	names []string
}

func newRegistry() *registry {
	return &registry{
		bindings:   make(map[Key]binding),
		contextual: make(map[Key]map[any]Concrete),
	}
}

// bind overwrites the descriptor and shared flag for key. A cached instance
// for key is left in place.
func (r *registry) bind(key Key, concrete Concrete, shared bool) {
	r.bindings[key] = binding{concrete: concrete, shared: shared}
}

func (r *registry) has(key Key) bool {
	_, ok := r.bindings[key]
	return ok
}

func (r *registry) isShared(key Key) bool {
	return r.bindings[key].shared
}

func (r *registry) remove(key Key) {
	delete(r.bindings, key)
}

// concreteFor returns the immediate descriptor for key. An alias whose
// target is registered in its own right stays an Alias, so the target's
// sharing and cache apply; any other alias is autowired as a type.
func (r *registry) concreteFor(key Key, cache *instanceCache) Concrete {
	b, ok := r.bindings[key]
	if !ok || b.concrete == nil {
		return autowire{key: key}
	}

	if alias, ok := b.concrete.(Alias); ok {
		if alias.Key != key && (r.has(alias.Key) || cache.has(alias.Key)) {
			return alias
		}
		return autowire{key: alias.Key}
	}

	return b.concrete
}

// bindContext records override for selector on every consumer.
func (r *registry) bindContext(consumers []Key, selector any, override Concrete) {
	for _, consumer := range consumers {
		m, ok := r.contextual[consumer]
		if !ok {
			m = make(map[any]Concrete)
			r.contextual[consumer] = m
			if name, ok := consumer.(string); ok {
				i, _ := slices.BinarySearch(r.names, name)
				r.names = slices.Insert(r.names, i, name)
			}
		}
		m[selector] = override
	}
}

// contextualFor finds the override registered for selector on the type
// being constructed. Consumers registered by type token win over consumers
// registered by name; names are tried in sorted order.
func (r *registry) contextualFor(declaring reflect.Type, selector any, lookup func(string) (reflect.Type, bool)) (Concrete, bool) {
	if len(r.contextual) == 0 {
		return nil, false
	}

	if m, ok := r.contextual[declaring]; ok {
		if override, ok := m[selector]; ok {
			return override, true
		}
	}

	for _, name := range r.names {
		if name != reflection.TypeName(declaring) {
			if t, ok := lookup(name); !ok || t != declaring {
				continue
			}
		}
		if override, ok := r.contextual[name][selector]; ok {
			return override, true
		}
	}

	return nil, false
}

// keys returns every key with a binding.
func (r *registry) keys() []Key {
	out := make([]Key, 0, len(r.bindings))
	for k := range r.bindings {
		out = append(out, k)
	}
	return out
}

func (r *registry) clear() {
	r.bindings = make(map[Key]binding)
	r.contextual = make(map[Key]map[any]Concrete)
	r.names = nil
}
