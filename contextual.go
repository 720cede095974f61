package ioc

import (
	"reflect"

	"go.uber.org/zap"
)

// ContextualBuilder registers an override that applies only while one of
// its consumers is being constructed.
//
//	c.When(ioc.TypeOf[*PhotoController]()).
//	    Needs(ioc.TypeOf[Filesystem]()).
//	    Give(ioc.TypeOf[*S3Filesystem]())
//
//	c.When("mailer").Needs("host").GiveValue("smtp.example.com")
type ContextualBuilder struct {
	container *Container
	consumers []Key
	selector  any
}

// When starts a contextual binding for one or more consumer types. A
// consumer is a type token or a type name known to the introspector.
func (c *Container) When(consumers ...Key) *ContextualBuilder {
	return &ContextualBuilder{container: c, consumers: consumers}
}

// Needs selects the dependency being overridden: a reflect.Type matches
// parameters declared with that type, a string matches a parameter of a
// non-nominal type by name.
func (b *ContextualBuilder) Needs(selector any) *ContextualBuilder {
	b.selector = selector
	return b
}

// Give resolves key in place of the dependency.
func (b *ContextualBuilder) Give(key Key) error {
	return b.give(Alias{Key: key})
}

// GiveFactory invokes fn in place of the dependency.
func (b *ContextualBuilder) GiveFactory(fn Factory) error {
	return b.give(fn)
}

// GiveValue supplies v in place of the dependency.
func (b *ContextualBuilder) GiveValue(v any) error {
	return b.give(Value{V: v})
}

func (b *ContextualBuilder) give(override Concrete) error {
	switch s := b.selector.(type) {
	case reflect.Type:
	case string:
		if s == "" {
			return ErrNoSelector
		}
	default:
		return ErrNoSelector
	}

	for _, consumer := range b.consumers {
		if err := validateKey(consumer); err != nil {
			return err
		}
	}

	if err := validateConcrete(override); err != nil {
		return KeyError{Key: b.selector, Cause: err}
	}

	c := b.container
	defer c.lock()()

	c.core.registry.bindContext(b.consumers, b.selector, override)
	for _, consumer := range b.consumers {
		c.core.logger.Debug("contextual binding registered",
			zap.String("consumer", formatKey(consumer)),
			zap.String("needs", formatKey(b.selector)),
			zap.String("give", describe(b.selector, override)),
		)
	}
	return nil
}
