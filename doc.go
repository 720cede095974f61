// Package ioc provides an inversion-of-control container: a registry that
// maps keys to construction strategies, and a resolver that builds fully
// wired object graphs on demand.
//
// # Overview
//
// A key is any comparable value. Strings name services, and type tokens
// produced by TypeOf name types:
//
//	c := ioc.New()
//	c.Bind(ioc.TypeOf[Logger](), ioc.To(ioc.TypeOf[*FileLogger]()))
//	c.Singleton("db", ioc.ToFactory(func(c *ioc.Container) (any, error) {
//	    return sql.Open("postgres", dsn)
//	}))
//
//	logger, err := ioc.ResolveType[Logger](c)
//
// # Descriptors
//
// A binding maps a key to one of:
//
//   - nothing: the key is autowired as a type
//   - an Alias: another key is resolved instead (chains are allowed)
//   - a Factory: a function called with the container, never autowired
//   - a Value: a pre-built instance
//
// Instance stores a pre-built value directly. It is returned verbatim and
// is never reconstructed.
//
// # Sharing
//
// A shared binding memoizes the first instance it produces under its own
// key. An alias to a shared key returns that key's instance:
//
//	c.Singleton("alpha", ioc.To(ioc.TypeOf[*Stack]()))
//	c.Bind("beta", ioc.To("alpha"))
//	// Make("alpha") and Make("beta") return the same *Stack.
//	// Make(ioc.TypeOf[*Stack]()) returns a new one each time.
//
// Cached instances are only dropped by Forget, Unbind, Flush or Close.
// Binding a key again does not invalidate its cached instance.
//
// Close also disposes the shared instances the container built, in reverse
// build order, when they implement Disposable or DisposableWithContext:
//
//	defer c.Close(ctx)
//
// # Autowiring
//
// Go has no runtime constructor metadata, so constructors are registered
// with Define. Types without a definition are built from their zero value.
//
//	c.Define(NewMailer, ioc.Params("transport", "host"), ioc.Default("host", "localhost"))
//
// Each parameter is supplied, in order, by:
//
//  1. a contextual override for its type
//  2. resolving its type (interfaces, structs and struct pointers), falling
//     back to its default when that fails
//  3. a contextual override for its name (other types)
//  4. its default
//
// Otherwise resolution fails with a BindingResolutionError naming the
// parameter and the type being built.
//
// # Contextual Bindings
//
// Overrides apply only while a given consumer type is constructed:
//
//	c.When(ioc.TypeOf[*PhotoController]()).
//	    Needs(ioc.TypeOf[Filesystem]()).
//	    Give(ioc.TypeOf[*LocalFilesystem]())
//
//	c.When("mailer").Needs("host").GiveValue("smtp.example.com")
//
// # Errors
//
// Resolution errors can be matched with errors.Is against the sentinel
// values, or with errors.As against the typed errors:
//
//	if ioc.IsCircular(err) { ... }
//
//	var bre ioc.BindingResolutionError
//	if errors.As(err, &bre) {
//	    log.Printf("cannot supply %s to %s", bre.Parameter, bre.Type)
//	}
//
// # Manifests
//
// Package manifest applies bindings, instances and contextual overrides
// declared in YAML, and cmd/iocmanifest validates and prints such files.
//
// # Concurrency
//
// A Container is safe for concurrent use. One lock guards bindings and
// cached instances, so a shared key is built at most once. Factories and
// constructors run under that lock. Calls they make on the container from
// the resolving goroutine, through the Container they receive or one they
// captured, join the resolution in progress. Calls from goroutines they
// start wait for it to finish.
package ioc
