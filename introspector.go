package ioc

import (
	"reflect"

	"github.com/junioryono/ioc/internal/reflection"
	"go.uber.org/zap"
)

// Introspector reports how types are constructed. The default implementation
// reads constructors registered with Container.Define; any other
// implementation can be plugged in with WithIntrospector.
type Introspector interface {
	// Lookup finds a type by name. Unbound string keys are autowired
	// through it.
	Lookup(name string) (reflect.Type, bool)

	// Inspect reports whether t is instantiable and its constructor's
	// ordered parameters.
	Inspect(t reflect.Type) (*TypeInfo, error)
}

// Definer is implemented by introspectors that accept constructor
// registrations.
type Definer interface {
	Define(target any, opts ...DefineOption) (reflect.Type, error)
}

// TypeInfo is the introspection result for a type.
type TypeInfo = reflection.TypeInfo

// Parameter describes one constructor parameter.
type Parameter = reflection.Parameter

// DefineOption configures Container.Define.
type DefineOption = reflection.Option

// In marks a parameter object. When a constructor takes a single struct
// with In embedded, each exported field becomes a parameter named after the
// field:
//
//	type MailerParams struct {
//	    ioc.In
//
//	    Transport Transport                // resolved by type
//	    Logger    Logger   `optional:"true"` // nil when it cannot be resolved
//	    Host      string   `default:"localhost"`
//	    Port      int      `default:"25"`
//	    Internal  string   `inject:"-"`
//	}
type In = reflection.In

// Named registers an extra name the defined type can be looked up by, so a
// string key such as "mailer" autowires it.
func Named(name string) DefineOption {
	return reflection.Named(name)
}

// Params names the positional parameters of a constructor in order.
// Without names, parameters are called arg0, arg1, ...
func Params(names ...string) DefineOption {
	return reflection.Params(names...)
}

// Default gives a parameter a default value, making it optional.
func Default(name string, value any) DefineOption {
	return reflection.Default(name, value)
}

// TypeName is the name a type is registered under by Define.
func TypeName(t reflect.Type) string {
	return reflection.TypeName(t)
}

// Define registers a constructor function, or a bare reflect.Type, with the
// container's introspector. Constructors have the form func(...) T or
// func(...) (T, error).
//
//	c.Define(NewMailer, ioc.Params("transport", "host"), ioc.Default("host", "localhost"))
func (c *Container) Define(target any, opts ...DefineOption) error {
	definer, ok := c.core.introspector.(Definer)
	if !ok {
		return DefinitionError{Target: target, Cause: ErrNoDefiner}
	}

	t, err := definer.Define(target, opts...)
	if err != nil {
		return DefinitionError{Target: target, Cause: err}
	}

	c.core.logger.Debug("type defined", zap.String("type", reflection.TypeName(t)))
	return nil
}
