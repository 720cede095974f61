package reflection

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// In marks a parameter object. A constructor taking a single struct that
// embeds In has its exported fields treated as individual parameters.
type In struct{}

var (
	inType  = reflect.TypeOf((*In)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Parameter describes one constructor parameter or parameter object field.
type Parameter struct {
	Name     string
	Type     reflect.Type
	Index    int  // Argument position, or field index inside the parameter object
	Nominal  bool // Interface, struct or pointer-to-struct type
	Optional bool // Default is usable when nothing else supplies the argument
	Default  any
}

// TypeInfo is the introspection result for a constructible type.
type TypeInfo struct {
	Type         reflect.Type
	Instantiable bool

	// Constructor is invalid when the type is built directly.
	Constructor    reflect.Value
	Parameters     []Parameter
	ParamObject    reflect.Type // Non-nil when the constructor takes an In struct
	ParamObjectPtr bool
	Variadic       bool
	HasErrorReturn bool
}

// HasConstructor reports whether a constructor function was registered.
func (i *TypeInfo) HasConstructor() bool {
	return i.Constructor.IsValid()
}

// definition is what Define records for a type.
type definition struct {
	ctor       reflect.Value
	names      []string
	paramNames []string
	defaults   map[string]any
}

// Option configures a Define call.
type Option func(*definition)

// Named registers an additional name the type can be looked up by.
func Named(name string) Option {
	return func(d *definition) {
		d.names = append(d.names, name)
	}
}

// Params names the positional constructor parameters in declaration order.
func Params(names ...string) Option {
	return func(d *definition) {
		d.paramNames = names
	}
}

// Default gives the named parameter a default value.
func Default(name string, value any) Option {
	return func(d *definition) {
		if d.defaults == nil {
			d.defaults = make(map[string]any)
		}
		d.defaults[name] = value
	}
}

// Analyzer is the default type introspector. It keeps a table of registered
// constructors and type names and caches analysis results.
type Analyzer struct {
	mu    sync.RWMutex
	defs  map[reflect.Type]*definition
	names map[string]reflect.Type
	cache map[reflect.Type]*TypeInfo
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		defs:  make(map[reflect.Type]*definition),
		names: make(map[string]reflect.Type),
		cache: make(map[reflect.Type]*TypeInfo),
	}
}

// Define registers a constructor function or a bare reflect.Type.
// It returns the type the definition produces.
func (a *Analyzer) Define(target any, opts ...Option) (reflect.Type, error) {
	if target == nil {
		return nil, fmt.Errorf("definition target cannot be nil")
	}

	def := &definition{}
	for _, opt := range opts {
		opt(def)
	}

	var typ reflect.Type
	if t, ok := target.(reflect.Type); ok {
		typ = t
	} else {
		val := reflect.ValueOf(target)
		if val.Kind() != reflect.Func {
			return nil, fmt.Errorf("constructor must be a function or reflect.Type, got %T", target)
		}
		if val.IsNil() {
			return nil, fmt.Errorf("constructor cannot be nil")
		}

		out, err := constructorOutput(val.Type())
		if err != nil {
			return nil, err
		}
		typ = out
		def.ctor = val
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Analyze before touching the tables so a bad definition leaves any
	// earlier one and its names in place.
	if def.ctor.IsValid() {
		if _, err := a.analyze(typ, def); err != nil {
			return nil, err
		}
	} else {
		delete(a.cache, typ)
	}

	a.defs[typ] = def
	a.names[TypeName(typ)] = typ
	for _, name := range def.names {
		a.names[name] = typ
	}

	return typ, nil
}

// Lookup finds a defined type by name.
func (a *Analyzer) Lookup(name string) (reflect.Type, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.names[name]
	return t, ok
}

// Names returns every registered type name, sorted.
func (a *Analyzer) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.names))
	for name := range a.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inspect reports how t is constructed.
func (a *Analyzer) Inspect(t reflect.Type) (*TypeInfo, error) {
	if t == nil {
		return nil, fmt.Errorf("type cannot be nil")
	}

	a.mu.RLock()
	if cached, ok := a.cache[t]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.analyze(t, a.defs[t])
}

// analyze must be called with mu held for writing.
func (a *Analyzer) analyze(t reflect.Type, def *definition) (*TypeInfo, error) {
	info := &TypeInfo{
		Type:         t,
		Instantiable: Instantiable(t),
	}

	if def != nil && def.ctor.IsValid() {
		info.Instantiable = true
		info.Constructor = def.ctor

		fnType := def.ctor.Type()
		info.HasErrorReturn = fnType.NumOut() == 2
		info.Variadic = fnType.IsVariadic()

		var err error
		if fnType.NumIn() == 1 && hasEmbeddedIn(fnType.In(0)) {
			err = a.analyzeParamObject(info, fnType.In(0), def)
		} else {
			err = a.analyzeParameters(info, fnType, def)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to analyze constructor for %s: %w", t, err)
		}
	}

	a.cache[t] = info
	return info, nil
}

// analyzeParameters fills positional parameters.
func (a *Analyzer) analyzeParameters(info *TypeInfo, fnType reflect.Type, def *definition) error {
	if len(def.paramNames) > fnType.NumIn() {
		return fmt.Errorf("%d parameter names given for %d parameters", len(def.paramNames), fnType.NumIn())
	}

	info.Parameters = make([]Parameter, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)
		param := Parameter{
			Name:    fmt.Sprintf("arg%d", i),
			Type:    paramType,
			Index:   i,
			Nominal: IsNominal(paramType),
		}
		if i < len(def.paramNames) && def.paramNames[i] != "" {
			param.Name = def.paramNames[i]
		}

		if info.Variadic && i == fnType.NumIn()-1 {
			param.Optional = true
			param.Default = reflect.MakeSlice(paramType, 0, 0).Interface()
		}

		if value, ok := def.defaults[param.Name]; ok {
			if _, ok := Assign(paramType, value); !ok {
				return fmt.Errorf("default for parameter %s: %T is not assignable to %s", param.Name, value, paramType)
			}
			param.Optional = true
			param.Default = value
		}

		info.Parameters[i] = param
	}

	for name := range def.defaults {
		if !hasParam(info.Parameters, name) {
			return fmt.Errorf("default given for unknown parameter %s", name)
		}
	}

	return nil
}

// analyzeParamObject flattens an In struct's exported fields into parameters.
func (a *Analyzer) analyzeParamObject(info *TypeInfo, paramType reflect.Type, def *definition) error {
	structType := paramType
	if structType.Kind() == reflect.Pointer {
		info.ParamObjectPtr = true
		structType = structType.Elem()
	}
	info.ParamObject = structType

	params := make([]Parameter, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type == inType {
			continue
		}
		if field.Tag.Get("inject") == "-" {
			continue
		}

		param := Parameter{
			Name:    field.Name,
			Type:    field.Type,
			Index:   i,
			Nominal: IsNominal(field.Type),
		}

		if val, ok := field.Tag.Lookup("optional"); ok && val == "true" {
			param.Optional = true
			param.Default = reflect.Zero(field.Type).Interface()
		}

		if val, ok := field.Tag.Lookup("default"); ok {
			value, err := parseDefault(field.Type, val)
			if err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
			param.Optional = true
			param.Default = value
		}

		if value, ok := def.defaults[field.Name]; ok {
			if _, ok := Assign(field.Type, value); !ok {
				return fmt.Errorf("default for field %s: %T is not assignable to %s", field.Name, value, field.Type)
			}
			param.Optional = true
			param.Default = value
		}

		params = append(params, param)
	}

	for name := range def.defaults {
		if !hasParam(params, name) {
			return fmt.Errorf("default given for unknown field %s", name)
		}
	}

	info.Parameters = params
	return nil
}

// Clear clears the analysis cache. Definitions are kept.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	a.cache = make(map[reflect.Type]*TypeInfo)
	a.mu.Unlock()
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// constructorOutput validates a constructor signature and returns the
// produced type.
func constructorOutput(fnType reflect.Type) (reflect.Type, error) {
	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errType {
			return nil, fmt.Errorf("constructor's second return value must be error, got %s", fnType.Out(1))
		}
	default:
		return nil, fmt.Errorf("constructor must return a value and an optional error, got %d results", fnType.NumOut())
	}

	out := fnType.Out(0)
	if out == errType {
		return nil, fmt.Errorf("constructor only returns error")
	}

	if fnType.NumIn() > 1 {
		for i := 0; i < fnType.NumIn(); i++ {
			if hasEmbeddedIn(fnType.In(i)) {
				return nil, fmt.Errorf("parameter objects must be the only constructor parameter")
			}
		}
	}

	return out, nil
}

// hasEmbeddedIn checks if a struct (or pointer to struct) embeds In.
func hasEmbeddedIn(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
	}

	return false
}

func hasParam(params []Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}
