package ioc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// lifecycle records the shared instances a container built, in build
// order, so they can be disposed in reverse. Values handed to the
// container by the caller are owned by the caller and never tracked.
type lifecycle struct {
	mu        sync.Mutex
	instances []tracked
	external  []any
}

type tracked struct {
	key      Key
	instance any
}

func newLifecycle() *lifecycle {
	return &lifecycle{}
}

func disposable(instance any) bool {
	switch instance.(type) {
	case Disposable, DisposableWithContext:
		return true
	default:
		return false
	}
}

// identifiable reports whether instance can be checked for identity with ==.
func identifiable(instance any) bool {
	return instance != nil && reflect.ValueOf(instance).Comparable()
}

// owned marks instance as supplied by the caller.
func (l *lifecycle) owned(instance any) {
	if !disposable(instance) || !identifiable(instance) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !slices.Contains(l.external, instance) {
		l.external = append(l.external, instance)
	}
}

// track remembers instance if it can be disposed. An instance reachable
// through several shared keys is tracked once.
func (l *lifecycle) track(key Key, instance any) {
	if !disposable(instance) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if identifiable(instance) {
		if slices.Contains(l.external, instance) {
			return
		}
		for _, t := range l.instances {
			if t.instance == instance {
				return
			}
		}
	}
	l.instances = append(l.instances, tracked{key: key, instance: instance})
}

// len reports how many instances are waiting to be disposed.
func (l *lifecycle) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.instances)
}

// dispose closes every tracked instance, last built first, and forgets
// them. All failures are returned together.
func (l *lifecycle) dispose(ctx context.Context) error {
	l.mu.Lock()
	instances := l.instances
	l.instances = nil
	l.mu.Unlock()

	var errs []error

	// Dispose in reverse order (LIFO)
	for i := len(instances) - 1; i >= 0; i-- {
		t := instances[i]

		var err error
		switch d := t.instance.(type) {
		case DisposableWithContext:
			err = d.Close(ctx)
		case Disposable:
			err = d.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", formatKey(t.key), err))
		}
	}

	return errors.Join(errs...)
}
