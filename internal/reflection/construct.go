package reflection

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// TypeName is the name a type is registered and looked up under.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// IsNominal reports whether parameters of type t are resolved as
// dependencies: interfaces, structs and pointers to structs. Everything else
// is a plain value that needs a named override or a default.
func IsNominal(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// Instantiable reports whether t can be built without a constructor.
func Instantiable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return false
	default:
		return true
	}
}

// Zero builds t without a constructor. Pointers get a freshly allocated
// element so every call yields a distinct instance.
func Zero(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Pointer:
		return reflect.New(t.Elem())
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	case reflect.Chan:
		return reflect.MakeChan(t, 0)
	default:
		return reflect.New(t).Elem()
	}
}

// Assign converts v into a value usable as an argument of type t.
// A nil v becomes the zero value of t.
func Assign(t reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		default:
			return reflect.Value{}, false
		}
	}

	val := reflect.ValueOf(v)
	if val.Type().AssignableTo(t) {
		return val, true
	}

	// Untyped constants such as 8080 arrive as int; allow conversions
	// between basic kinds of the same family when the value fits.
	if !IsNominal(t) && sameFamily(val.Kind(), t.Kind()) && val.Type().ConvertibleTo(t) && fits(val, t) {
		return val.Convert(t), true
	}

	return reflect.Value{}, false
}

// Call constructs the type described by info from ordered arguments, one per
// parameter. The returned error is the constructor's own error return.
func Call(info *TypeInfo, args []reflect.Value) (reflect.Value, error) {
	if !info.HasConstructor() {
		return Zero(info.Type), nil
	}

	if len(args) != len(info.Parameters) {
		return reflect.Value{}, fmt.Errorf("%s needs %d arguments, got %d", info.Type, len(info.Parameters), len(args))
	}

	if info.ParamObject != nil {
		obj := reflect.New(info.ParamObject)
		for i, param := range info.Parameters {
			obj.Elem().Field(param.Index).Set(args[i])
		}
		if info.ParamObjectPtr {
			args = []reflect.Value{obj}
		} else {
			args = []reflect.Value{obj.Elem()}
		}
	}

	var results []reflect.Value
	if info.Variadic && info.ParamObject == nil {
		results = info.Constructor.CallSlice(args)
	} else {
		results = info.Constructor.Call(args)
	}

	if info.HasErrorReturn {
		if errVal := results[1]; !errVal.IsNil() {
			return results[0], errVal.Interface().(error)
		}
	}

	return results[0], nil
}

// parseDefault parses a `default:"..."` tag for basic kinds.
func parseDefault(t reflect.Type, raw string) (any, error) {
	var (
		v   any
		err error
	)

	switch {
	case t == durationType:
		v, err = time.ParseDuration(raw)
	case t.Kind() == reflect.String:
		v = raw
	case t.Kind() == reflect.Bool:
		v, err = strconv.ParseBool(raw)
	case isInt(t.Kind()):
		v, err = strconv.ParseInt(raw, 10, t.Bits())
	case isUint(t.Kind()):
		v, err = strconv.ParseUint(raw, 10, t.Bits())
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		v, err = strconv.ParseFloat(raw, t.Bits())
	default:
		return nil, fmt.Errorf("default tag not supported for %s", t)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid default %q for %s: %w", raw, t, err)
	}

	return reflect.ValueOf(v).Convert(t).Interface(), nil
}

// fits reports whether the numeric value v can be represented in t.
func fits(v reflect.Value, t reflect.Type) bool {
	switch {
	case isInt(v.Kind()):
		n := v.Int()
		if isUint(t.Kind()) {
			return n >= 0 && !reflect.Zero(t).OverflowUint(uint64(n))
		}
		if isInt(t.Kind()) {
			return !reflect.Zero(t).OverflowInt(n)
		}
	case isUint(v.Kind()):
		n := v.Uint()
		if isInt(t.Kind()) {
			return n <= math.MaxInt64 && !reflect.Zero(t).OverflowInt(int64(n))
		}
		if isUint(t.Kind()) {
			return !reflect.Zero(t).OverflowUint(n)
		}
	case v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64:
		if t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 {
			return !reflect.Zero(t).OverflowFloat(v.Float())
		}
	}
	return true
}

func sameFamily(a, b reflect.Kind) bool {
	switch {
	case isInt(a) || isUint(a):
		return isInt(b) || isUint(b)
	case a == reflect.Float32 || a == reflect.Float64:
		return b == reflect.Float32 || b == reflect.Float64
	default:
		return a == b
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}
