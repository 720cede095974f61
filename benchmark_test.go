package ioc_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/junioryono/ioc"
)

// Benchmark service types
type BenchService struct {
	Name string
}

type BenchDep1 struct{ Value int }
type BenchDep2 struct{ Value int }
type BenchDep3 struct{ Value int }
type BenchDep4 struct{ Value int }
type BenchDep5 struct{ Value int }

type BenchServiceWith1Dep struct {
	Dep1 *BenchDep1
}

type BenchServiceWith3Deps struct {
	Dep1 *BenchDep1
	Dep2 *BenchDep2
	Dep3 *BenchDep3
}

type BenchServiceWith5Deps struct {
	Dep1 *BenchDep1
	Dep2 *BenchDep2
	Dep3 *BenchDep3
	Dep4 *BenchDep4
	Dep5 *BenchDep5
}

// Constructors for benchmarks
func NewBenchService() *BenchService {
	return &BenchService{Name: "bench"}
}

func NewBenchDep1() *BenchDep1 { return &BenchDep1{Value: 1} }
func NewBenchDep2() *BenchDep2 { return &BenchDep2{Value: 2} }
func NewBenchDep3() *BenchDep3 { return &BenchDep3{Value: 3} }
func NewBenchDep4() *BenchDep4 { return &BenchDep4{Value: 4} }
func NewBenchDep5() *BenchDep5 { return &BenchDep5{Value: 5} }

func NewBenchServiceWith1Dep(dep1 *BenchDep1) *BenchServiceWith1Dep {
	return &BenchServiceWith1Dep{Dep1: dep1}
}

func NewBenchServiceWith3Deps(dep1 *BenchDep1, dep2 *BenchDep2, dep3 *BenchDep3) *BenchServiceWith3Deps {
	return &BenchServiceWith3Deps{Dep1: dep1, Dep2: dep2, Dep3: dep3}
}

func NewBenchServiceWith5Deps(dep1 *BenchDep1, dep2 *BenchDep2, dep3 *BenchDep3, dep4 *BenchDep4, dep5 *BenchDep5) *BenchServiceWith5Deps {
	return &BenchServiceWith5Deps{Dep1: dep1, Dep2: dep2, Dep3: dep3, Dep4: dep4, Dep5: dep5}
}

var benchConstructors = []any{
	NewBenchService,
	NewBenchDep1, NewBenchDep2, NewBenchDep3, NewBenchDep4, NewBenchDep5,
	NewBenchServiceWith1Dep, NewBenchServiceWith3Deps, NewBenchServiceWith5Deps,
}

// setupBenchContainer defines every benchmark constructor and, when shared
// is set, registers each produced type as a singleton.
func setupBenchContainer(b *testing.B, shared bool) *ioc.Container {
	b.Helper()

	c := ioc.New()
	for _, ctor := range benchConstructors {
		if err := c.Define(ctor); err != nil {
			b.Fatalf("failed to define %T: %v", ctor, err)
		}
		if shared {
			out := reflect.TypeOf(ctor).Out(0)
			if err := c.Singleton(out); err != nil {
				b.Fatalf("failed to share %s: %v", out, err)
			}
		}
	}
	return c
}

var benchTargets = []struct {
	name   string
	target reflect.Type
}{
	{"0deps", ioc.TypeOf[*BenchService]()},
	{"1dep", ioc.TypeOf[*BenchServiceWith1Dep]()},
	{"3deps", ioc.TypeOf[*BenchServiceWith3Deps]()},
	{"5deps", ioc.TypeOf[*BenchServiceWith5Deps]()},
}

// BenchmarkResolution tests resolution performance for shared and autowired
// keys with different dependency counts
func BenchmarkResolution(b *testing.B) {
	for _, shared := range []bool{true, false} {
		mode := "Autowired"
		if shared {
			mode = "Shared"
		}
		for _, tc := range benchTargets {
			b.Run(fmt.Sprintf("%s/%s", mode, tc.name), func(b *testing.B) {
				c := setupBenchContainer(b, shared)

				// Warm up the cache for shared keys
				_, _ = c.Make(tc.target)

				b.ResetTimer()
				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					_, _ = c.Make(tc.target)
				}
			})
		}
	}
}

// BenchmarkAliasChain tests resolution through aliases of growing length
func BenchmarkAliasChain(b *testing.B) {
	for _, length := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("%dlinks", length), func(b *testing.B) {
			c := setupBenchContainer(b, true)

			prev := ioc.Key(ioc.TypeOf[*BenchServiceWith5Deps]())
			for i := 0; i < length; i++ {
				link := fmt.Sprintf("link-%d", i)
				if err := c.Bind(link, ioc.To(prev)); err != nil {
					b.Fatalf("failed to bind %s: %v", link, err)
				}
				prev = link
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_, _ = c.Make(prev)
			}
		})
	}
}

// BenchmarkConcurrentResolution tests concurrent resolution performance
func BenchmarkConcurrentResolution(b *testing.B) {
	for _, shared := range []bool{true, false} {
		name := "Autowired/5deps"
		if shared {
			name = "Shared/5deps"
		}
		b.Run(name, func(b *testing.B) {
			c := setupBenchContainer(b, shared)
			target := ioc.TypeOf[*BenchServiceWith5Deps]()
			_, _ = c.Make(target)

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					_, _ = c.Make(target)
				}
			})
		})
	}
}

// BenchmarkFactoryResolution tests factories that resolve their own
// dependencies through the container they receive
func BenchmarkFactoryResolution(b *testing.B) {
	c := setupBenchContainer(b, false)
	err := c.Bind("service", ioc.ToFactory(func(c *ioc.Container) (any, error) {
		dep, err := ioc.ResolveType[*BenchDep1](c)
		if err != nil {
			return nil, err
		}
		return NewBenchServiceWith1Dep(dep), nil
	}))
	if err != nil {
		b.Fatalf("failed to bind factory: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = c.Make("service")
	}
}

// BenchmarkGenericResolve tests the typed helpers
func BenchmarkGenericResolve(b *testing.B) {
	c := setupBenchContainer(b, true)
	_, _ = ioc.ResolveType[*BenchServiceWith5Deps](c)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = ioc.ResolveType[*BenchServiceWith5Deps](c)
	}
}

// BenchmarkContainerSetup tests defining and binding a container
func BenchmarkContainerSetup(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = setupBenchContainer(b, true)
	}
}
