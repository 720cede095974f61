package testutil

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertResolvable checks that key resolves to a non-nil T
func AssertResolvable[T any](t *testing.T, c *ioc.Container, key ioc.Key) T {
	t.Helper()
	instance, err := ioc.Resolve[T](c, key)
	require.NoError(t, err, "failed to resolve %v", key)
	require.NotNil(t, instance, "resolved instance is nil")
	return instance
}

// AssertSameInstance verifies two instances are identical
func AssertSameInstance(t *testing.T, expected, actual any, msgAndArgs ...any) {
	t.Helper()
	assert.Same(t, expected, actual, msgAndArgs...)
}

// AssertDifferentInstances verifies two instances are distinct
func AssertDifferentInstances(t *testing.T, first, second any, msgAndArgs ...any) {
	t.Helper()
	assert.NotSame(t, first, second, msgAndArgs...)
}

// AssertErrorType checks if an error is of a specific type
func AssertErrorType[T error](t *testing.T, err error, msgAndArgs ...any) T {
	t.Helper()
	var target T
	require.ErrorAs(t, err, &target, msgAndArgs...)
	return target
}

// AssertBindingResolution checks that err is a BindingResolutionError for
// parameter of the given type. An empty parameter expects a
// not-instantiable failure.
func AssertBindingResolution(t *testing.T, err error, parameter string, typeName string) {
	t.Helper()
	bre := AssertErrorType[ioc.BindingResolutionError](t, err)
	assert.Equal(t, parameter, bre.Parameter)
	require.NotNil(t, bre.Type)
	assert.Equal(t, typeName, bre.Type.String())
	assert.True(t, ioc.IsBindingResolution(err))
}

// AssertTypeNotFound checks that err is a TypeNotFoundError
func AssertTypeNotFound(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, ioc.IsTypeNotFound(err), "expected type not found error, got: %v", err)
}

// AssertCircularDependency checks if an error is a circular dependency error
func AssertCircularDependency(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, ioc.IsCircular(err), "expected circular dependency error, got: %v", err)
}
