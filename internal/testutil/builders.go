package testutil

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/require"
)

// ContainerBuilder provides a fluent interface for building test containers
type ContainerBuilder struct {
	t    *testing.T
	c    *ioc.Container
}

// NewContainerBuilder creates a new ContainerBuilder
func NewContainerBuilder(t *testing.T, opts ...ioc.Option) *ContainerBuilder {
	return &ContainerBuilder{
		t: t,
		c: ioc.New(opts...),
	}
}

// WithFixtures defines every fixture constructor
func (b *ContainerBuilder) WithFixtures() *ContainerBuilder {
	DefineFixtures(b.t, b.c)
	return b
}

// WithDefinition defines a constructor
func (b *ContainerBuilder) WithDefinition(target any, opts ...ioc.DefineOption) *ContainerBuilder {
	require.NoError(b.t, b.c.Define(target, opts...))
	return b
}

// WithBinding adds a binding
func (b *ContainerBuilder) WithBinding(key ioc.Key, opts ...ioc.BindOption) *ContainerBuilder {
	require.NoError(b.t, b.c.Bind(key, opts...))
	return b
}

// WithSingleton adds a shared binding
func (b *ContainerBuilder) WithSingleton(key ioc.Key, opts ...ioc.BindOption) *ContainerBuilder {
	require.NoError(b.t, b.c.Singleton(key, opts...))
	return b
}

// WithInstance stores a pre-built instance
func (b *ContainerBuilder) WithInstance(key ioc.Key, value any) *ContainerBuilder {
	require.NoError(b.t, b.c.Instance(key, value))
	return b
}

// Build returns the container
func (b *ContainerBuilder) Build() *ioc.Container {
	return b.c
}
