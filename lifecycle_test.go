package ioc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeLog struct {
	closed []string
}

type closer struct {
	name string
	log  *closeLog
	err  error
}

func (c *closer) Close() error {
	c.log.closed = append(c.log.closed, c.name)
	return c.err
}

type ctxCloser struct {
	log *closeLog
	ctx context.Context
}

func (c *ctxCloser) Close(ctx context.Context) error {
	c.ctx = ctx
	c.log.closed = append(c.log.closed, "ctx")
	return nil
}

type pool struct {
	log *closeLog
}

func (p *pool) Close() error {
	p.log.closed = append(p.log.closed, "pool")
	return nil
}

func closerFactory(name string, log *closeLog, err error) ioc.Factory {
	return func(*ioc.Container) (any, error) {
		return &closer{name: name, log: log, err: err}, nil
	}
}

func TestClose_ReverseBuildOrder(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()

	require.NoError(t, c.Singleton("a", ioc.ToFactory(closerFactory("a", log, nil))))
	require.NoError(t, c.Singleton("b", ioc.ToFactory(closerFactory("b", log, nil))))

	_, err := c.Make("a")
	require.NoError(t, err)
	_, err = c.Make("b")
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"b", "a"}, log.closed)

	assert.False(t, c.Resolved("a"), "cache is cleared")
	assert.True(t, c.IsBound("a"), "bindings remain")

	// Nothing left to close.
	require.NoError(t, c.Close(context.Background()))
	assert.Len(t, log.closed, 2)
}

func TestClose_RebuiltAfterClose(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()
	require.NoError(t, c.Singleton("a", ioc.ToFactory(closerFactory("a", log, nil))))

	first, err := c.Make("a")
	require.NoError(t, err)
	require.NoError(t, c.Close(context.Background()))

	second, err := c.Make("a")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"a", "a"}, log.closed)
}

func TestClose_UnsharedNotTracked(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()
	require.NoError(t, c.Bind("a", ioc.ToFactory(closerFactory("a", log, nil))))

	_, err := c.Make("a")
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	assert.Empty(t, log.closed)
}

func TestClose_CallerOwnedValues(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()

	require.NoError(t, c.Instance("instance", &closer{name: "instance", log: log}))
	require.NoError(t, c.Singleton("alias", ioc.To("instance")))
	require.NoError(t, c.Singleton("value", ioc.ToValue(&closer{name: "value", log: log})))

	for _, key := range []string{"instance", "alias", "value"} {
		_, err := c.Make(key)
		require.NoError(t, err)
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Empty(t, log.closed)
	assert.False(t, c.Resolved("instance"), "stored instances are forgotten")
}

func TestClose_SharedAliasClosedOnce(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()

	require.NoError(t, c.Singleton("alpha", ioc.ToFactory(closerFactory("alpha", log, nil))))
	require.NoError(t, c.Singleton("beta", ioc.To("alpha")))

	_, err := c.Make("beta")
	require.NoError(t, err)
	assert.True(t, c.Resolved("alpha"))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"alpha"}, log.closed)
}

// batch is a value-type Disposable whose Items field can hold a slice, so
// two batches cannot be compared with ==.
type batch struct {
	log   *closeLog
	Items any
}

func (b batch) Close() error {
	b.log.closed = append(b.log.closed, "batch")
	return nil
}

func TestClose_ValuesThatCannotBeCompared(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()

	for _, key := range []string{"first", "second"} {
		require.NoError(t, c.Singleton(key, ioc.ToFactory(func(*ioc.Container) (any, error) {
			return batch{log: log, Items: []string{"a", "b"}}, nil
		})))
	}

	assert.NotPanics(t, func() {
		_, err := c.Make("first")
		require.NoError(t, err)
		_, err = c.Make("second")
		require.NoError(t, err)
	})

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"batch", "batch"}, log.closed)
}

func TestClose_Autowired(t *testing.T) {
	log := &closeLog{}
	c := testutil.NewContainerBuilder(t).
		WithInstance(ioc.TypeOf[*closeLog](), log).
		WithDefinition(func(log *closeLog) *pool { return &pool{log: log} }, ioc.Params("log")).
		WithSingleton(ioc.TypeOf[*pool]()).
		Build()

	_, err := ioc.ResolveType[*pool](c)
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"pool"}, log.closed)
}

func TestClose_Context(t *testing.T) {
	log := &closeLog{}
	c := ioc.New()

	instance := &ctxCloser{log: log}
	require.NoError(t, c.Singleton("ctx", ioc.ToFactory(func(*ioc.Container) (any, error) {
		return instance, nil
	})))
	_, err := c.Make("ctx")
	require.NoError(t, err)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "shutdown")
	require.NoError(t, c.Close(ctx))

	assert.Equal(t, []string{"ctx"}, log.closed)
	assert.Equal(t, "shutdown", instance.ctx.Value(ctxKey{}))
}

func TestClose_Errors(t *testing.T) {
	log := &closeLog{}
	boom := errors.New("boom")
	c := ioc.New()

	require.NoError(t, c.Singleton("a", ioc.ToFactory(closerFactory("a", log, boom))))
	require.NoError(t, c.Singleton("b", ioc.ToFactory(closerFactory("b", log, nil))))
	for _, key := range []string{"a", "b"} {
		_, err := c.Make(key)
		require.NoError(t, err)
	}

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "closing a: boom")
	assert.Equal(t, []string{"b", "a"}, log.closed, "every instance is closed despite failures")
}
