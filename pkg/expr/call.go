package expr

import (
	"fmt"
	"reflect"
)

// IsCallable reports whether v can be invoked by a call expression.
func IsCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes fn with args. Missing arguments are passed as zero values
// and extra arguments are dropped, as in JavaScript. A trailing error
// result is returned as the error; a panic inside fn is recovered and
// returned as well.
func Call(fn any, args ...any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("panic: %w", e)
			} else {
				err = fmt.Errorf("panic: %v", rec)
			}
			result = nil
		}
	}()

	switch f := fn.(type) {
	case func(...any) any:
		return f(args...), nil
	case func(...any) (any, error):
		return f(args...)
	case func() any:
		return f(), nil
	case func():
		f()
		return nil, nil
	case func(any) any:
		return f(arg(args, 0)), nil
	case func(any):
		f(arg(args, 0))
		return nil, nil
	}

	if !IsCallable(fn) {
		return nil, fmt.Errorf("%T is not a function", fn)
	}
	return callReflect(reflect.ValueOf(fn), args)
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func callReflect(fv reflect.Value, args []any) (any, error) {
	ft := fv.Type()
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < fixed; i++ {
		v, err := convertArg(arg(args, i), ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	if ft.IsVariadic() {
		elem := ft.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, v)
		}
	}

	out := fv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if ft.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		var err error
		if ft.Out(len(out)-1) == errorType {
			err, _ = out[len(out)-1].Interface().(error)
		}
		return out[0].Interface(), err
	}
}

func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() != reflect.String && t.Kind() != reflect.String {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}
