// Package benchmarks compares ioc with dig and samber/do.
//
// Run benchmarks with: go test -bench=. -benchmem ./benchmarks/
package benchmarks

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/samber/do/v2"
	"go.uber.org/dig"
)

// =============================================================================
// Shared Test Types
// =============================================================================

// Simple service with no dependencies
type Logger struct {
	Name string
}

func NewLogger() *Logger {
	return &Logger{Name: "logger"}
}

type Config struct {
	Value string
}

func NewConfig() *Config {
	return &Config{Value: "config"}
}

// Service with 2 dependencies
type Database struct {
	Logger *Logger
	Config *Config
}

func NewDatabase(logger *Logger, config *Config) *Database {
	return &Database{Logger: logger, Config: config}
}

// Service with 3 dependencies
type Cache struct {
	Logger   *Logger
	Config   *Config
	Database *Database
}

func NewCache(logger *Logger, config *Config, db *Database) *Cache {
	return &Cache{Logger: logger, Config: config, Database: db}
}

// Service with 5 dependencies
type UserService struct {
	Logger   *Logger
	Config   *Config
	Database *Database
	Cache    *Cache
	Dep5     *Dep5
}

type Dep5 struct {
	Value int
}

func NewDep5() *Dep5 {
	return &Dep5{Value: 5}
}

func NewUserService(logger *Logger, config *Config, db *Database, cache *Cache, dep5 *Dep5) *UserService {
	return &UserService{Logger: logger, Config: config, Database: db, Cache: cache, Dep5: dep5}
}

var constructors = []any{NewLogger, NewConfig, NewDatabase, NewCache, NewDep5, NewUserService}

// newIOC defines every constructor and binds each produced type.
func newIOC(shared bool) *ioc.Container {
	c := ioc.New()
	for _, ctor := range constructors {
		_ = c.Define(ctor)
	}
	for _, t := range []ioc.Key{
		ioc.TypeOf[*Logger](),
		ioc.TypeOf[*Config](),
		ioc.TypeOf[*Database](),
		ioc.TypeOf[*Cache](),
		ioc.TypeOf[*Dep5](),
		ioc.TypeOf[*UserService](),
	} {
		if shared {
			_ = c.Singleton(t)
		} else {
			_ = c.Bind(t)
		}
	}
	return c
}

func newDig() *dig.Container {
	c := dig.New()
	for _, ctor := range constructors {
		_ = c.Provide(ctor)
	}
	return c
}

// newDo provides every constructor, resolving dependencies by hand the way
// do providers must.
func newDo() *do.RootScope {
	injector := do.New()
	do.Provide(injector, func(i do.Injector) (*Logger, error) { return NewLogger(), nil })
	do.Provide(injector, func(i do.Injector) (*Config, error) { return NewConfig(), nil })
	do.Provide(injector, func(i do.Injector) (*Database, error) {
		return NewDatabase(do.MustInvoke[*Logger](i), do.MustInvoke[*Config](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		return NewCache(do.MustInvoke[*Logger](i), do.MustInvoke[*Config](i), do.MustInvoke[*Database](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Dep5, error) { return NewDep5(), nil })
	do.Provide(injector, func(i do.Injector) (*UserService, error) {
		return NewUserService(
			do.MustInvoke[*Logger](i),
			do.MustInvoke[*Config](i),
			do.MustInvoke[*Database](i),
			do.MustInvoke[*Cache](i),
			do.MustInvoke[*Dep5](i),
		), nil
	})
	return injector
}

// =============================================================================
// Container Build Benchmarks
// =============================================================================

func BenchmarkBuild_IOC(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = newIOC(true)
	}
}

func BenchmarkBuild_Dig(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = newDig()
	}
}

func BenchmarkBuild_Do(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		injector := newDo()
		injector.Shutdown()
	}
}

// =============================================================================
// Simple Resolution Benchmarks (No Dependencies)
// =============================================================================

func BenchmarkResolve_Simple_IOC(b *testing.B) {
	c := newIOC(true)

	// Warm up
	ioc.MustResolve[*Logger](c, ioc.TypeOf[*Logger]())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ioc.MustResolve[*Logger](c, ioc.TypeOf[*Logger]())
	}
}

func BenchmarkResolve_Simple_Dig(b *testing.B) {
	c := newDig()

	// Warm up
	_ = c.Invoke(func(l *Logger) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(l *Logger) {})
	}
}

func BenchmarkResolve_Simple_Do(b *testing.B) {
	injector := newDo()
	defer injector.Shutdown()

	// Warm up
	do.MustInvoke[*Logger](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Logger](injector)
	}
}

// =============================================================================
// Complex Resolution Benchmarks (5 Dependencies)
// =============================================================================

func BenchmarkResolve_Complex_IOC(b *testing.B) {
	c := newIOC(true)

	// Warm up
	ioc.MustResolve[*UserService](c, ioc.TypeOf[*UserService]())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ioc.MustResolve[*UserService](c, ioc.TypeOf[*UserService]())
	}
}

func BenchmarkResolve_Complex_Dig(b *testing.B) {
	c := newDig()

	// Warm up
	_ = c.Invoke(func(u *UserService) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(u *UserService) {})
	}
}

func BenchmarkResolve_Complex_Do(b *testing.B) {
	injector := newDo()
	defer injector.Shutdown()

	// Warm up
	do.MustInvoke[*UserService](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*UserService](injector)
	}
}

// =============================================================================
// Transient Resolution Benchmarks
// =============================================================================

// dig has no transient lifetime, so only ioc and do take part.
func BenchmarkResolve_Transient_IOC(b *testing.B) {
	c := newIOC(false)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ioc.MustResolve[*Logger](c, ioc.TypeOf[*Logger]())
	}
}

func BenchmarkResolve_Transient_Do(b *testing.B) {
	injector := do.New()
	defer injector.Shutdown()
	do.ProvideTransient(injector, func(i do.Injector) (*Logger, error) { return NewLogger(), nil })

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Logger](injector)
	}
}

// =============================================================================
// Concurrent Resolution Benchmarks
// =============================================================================

func BenchmarkResolve_Concurrent_IOC(b *testing.B) {
	c := newIOC(true)
	ioc.MustResolve[*UserService](c, ioc.TypeOf[*UserService]())

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = ioc.MustResolve[*UserService](c, ioc.TypeOf[*UserService]())
		}
	})
}

func BenchmarkResolve_Concurrent_Dig(b *testing.B) {
	c := newDig()
	_ = c.Invoke(func(u *UserService) {})

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = c.Invoke(func(u *UserService) {})
		}
	})
}

func BenchmarkResolve_Concurrent_Do(b *testing.B) {
	injector := newDo()
	defer injector.Shutdown()
	do.MustInvoke[*UserService](injector)

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = do.MustInvoke[*UserService](injector)
		}
	})
}

// =============================================================================
// Sanity
// =============================================================================

func TestContainersBuildTheSameGraph(t *testing.T) {
	c := newIOC(true)
	viaIOC, err := ioc.ResolveType[*UserService](c)
	if err != nil {
		t.Fatalf("ioc: %v", err)
	}

	var viaDig *UserService
	if err := newDig().Invoke(func(u *UserService) { viaDig = u }); err != nil {
		t.Fatalf("dig: %v", err)
	}

	injector := newDo()
	defer injector.Shutdown()
	viaDo, err := do.Invoke[*UserService](injector)
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if viaIOC.Cache.Database.Logger != viaIOC.Logger {
		t.Error("ioc: shared logger was built twice")
	}
	if viaDig.Cache.Database.Logger != viaDig.Logger {
		t.Error("dig: shared logger was built twice")
	}
	if viaDo.Cache.Database.Logger != viaDo.Logger {
		t.Error("do: shared logger was built twice")
	}
	if viaIOC.Dep5.Value != viaDig.Dep5.Value || viaIOC.Config.Value != viaDig.Config.Value {
		t.Error("containers built different values")
	}
	if viaIOC.Dep5.Value != viaDo.Dep5.Value || viaIOC.Config.Value != viaDo.Config.Value {
		t.Error("containers built different values")
	}
}
