package admin

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
)

// Accessor references a method and the arguments to call it with.
// It lets RegisterAccessor derive the cache name, item key and producer of an item from the method itself.
type Accessor struct {
	// Receiver is the value the method is called on.
	Receiver any

	// Method is the exported method name.
	// The method returns T or (T, error) and may take a context.Context before Args.
	Method string

	// Args are the arguments captured for the call.
	Args []any
}

// CacheNamer selects the cache of a receiver's methods.
// CacheName reports false when the method has no cache of its own.
type CacheNamer interface {
	CacheName(method string) (string, bool)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// RegisterAccessor registers the item produced by calling a.Method on a.Receiver with a.Args.
//
// The cache name comes from the receiver's CacheNamer, falling back to the full name of the receiver type
// ("import/path.Type"). The item key is derived by the configured KeyDeriver.
//
// Names always come from the receiver type, also for methods promoted from an embedded struct: calling Bar
// on an Outer embedding *Inner names the item after Outer, not Inner. Register the embedded value itself
// to key items by the declaring type.
func (r *Registry) RegisterAccessor(ctx context.Context, a Accessor, initialize bool) error {
	if a.Receiver == nil || a.Method == "" {
		return newError(ErrInvalidAccessor, "Cache item not registered - invalid getterExpression")
	}

	rv := reflect.ValueOf(a.Receiver)
	method := rv.MethodByName(a.Method)
	if !method.IsValid() {
		return newError(ErrInvalidAccessor, "Cache item not registered - %T has no method %s", a.Receiver, a.Method)
	}

	typeName := declaringTypeName(rv.Type())
	if typeName == "" {
		return newError(ErrInvalidAccessor, "Cache item not registered - %T has no declaring type name", a.Receiver)
	}

	cacheName := typeName
	if namer, ok := a.Receiver.(CacheNamer); ok {
		if name, ok := namer.CacheName(a.Method); ok {
			cacheName = name
		}
	}

	itemKey, err := r.options.deriver.DeriveKey(typeName, a.Method, a.Args)
	if err != nil {
		return &CacheError{Reason: "Cache item not registered - " + err.Error(), Cause: ErrInvalidAccessor}
	}

	producer, err := compile(method, a.Args)
	if err != nil {
		return &CacheError{Reason: "Cache item not registered - " + err.Error(), Cause: ErrInvalidAccessor}
	}

	return r.RegisterItem(ctx, ItemDescriptor{
		CacheName: cacheName,
		ItemKey:   itemKey,
		Producer:  producer,
	}, initialize)
}

func declaringTypeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// compile checks the method signature against args and returns a producer calling it.
func compile(method reflect.Value, args []any) (Producer, error) {
	mt := method.Type()
	if mt.IsVariadic() {
		return nil, errors.New("variadic methods are not supported")
	}

	withContext := mt.NumIn() > 0 && mt.In(0) == contextType
	offset := 0
	if withContext {
		offset = 1
	}
	if mt.NumIn()-offset != len(args) {
		return nil, errors.Newf("method takes %d arguments, got %d", mt.NumIn()-offset, len(args))
	}

	in := make([]reflect.Value, mt.NumIn())
	for i, arg := range args {
		pt := mt.In(i + offset)
		if arg == nil {
			switch pt.Kind() {
			case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				in[i+offset] = reflect.Zero(pt)
				continue
			default:
				return nil, errors.Newf("argument %d: nil is not a %s", i, pt)
			}
		}
		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(pt) {
			return nil, errors.Newf("argument %d: %s is not assignable to %s", i, av.Type(), pt)
		}
		in[i+offset] = av
	}

	switch {
	case mt.NumOut() == 1 && mt.Out(0) != errorType:
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
	default:
		return nil, errors.New("method must return T or (T, error)")
	}

	return func(ctx context.Context) (any, error) {
		callIn := in
		if withContext {
			callIn = append([]reflect.Value{reflect.ValueOf(&ctx).Elem()}, in[1:]...)
		}
		out := method.Call(callIn)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}
