package gqlcompose

import (
	"fmt"
	"reflect"
)

type dispatchEntry struct {
	part *partSpec
	res  *resolverSpec
}

// Composite is a merged dispatch table produced by Registry.Compose. It
// satisfies Object and forwards every call to a freshly constructed instance
// of the resolver's owning part.
type Composite struct {
	name    string
	context reflect.Type
	fields  []string
	table   map[string]*dispatchEntry
}

var _ Object = (*Composite)(nil)

// Name returns the composite's name.
func (c *Composite) Name() string { return c.name }

// Context returns the governing context type, nil when unconstrained.
func (c *Composite) Context() reflect.Type { return c.context }

// ComposedFields returns the merged resolver field names: parts in
// composition order, each part's resolvers in method order.
func (c *Composite) ComposedFields() []string {
	return append([]string(nil), c.fields...)
}

// Owner reports the part owning the named resolver.
func (c *Composite) Owner(field string) (string, bool) {
	e, ok := c.table[field]
	if !ok {
		return "", false
	}
	return e.part.name, true
}

// Call invokes the named resolver on a fresh zero-value instance of its
// owning part, passing ctx first when the resolver declares a context
// parameter. It returns the resolver's value and error results.
func (c *Composite) Call(ctx any, field string, args ...any) (any, error) {
	e, ok := c.table[field]
	if !ok {
		return nil, fmt.Errorf("composite %s has no resolver %q", c.name, field)
	}
	res := e.res
	if len(args) != res.numArgs {
		return nil, fmt.Errorf("resolver %s.%s takes %d arguments, got %d", c.name, field, res.numArgs, len(args))
	}

	mt := res.method.Type
	in := make([]reflect.Value, 0, mt.NumIn()-1)
	if res.hasCtx {
		v, err := argValue(ctx, mt.In(1))
		if err != nil {
			return nil, fmt.Errorf("resolver %s.%s context: %w", c.name, field, err)
		}
		in = append(in, v)
	}
	for i, arg := range args {
		v, err := argValue(arg, mt.In(i+2))
		if err != nil {
			return nil, fmt.Errorf("resolver %s.%s argument %d: %w", c.name, field, i, err)
		}
		in = append(in, v)
	}

	// A fresh part instance per invocation keeps parts stateless.
	recv := reflect.New(e.part.typ)
	out := recv.Method(res.method.Index).Call(in)

	var err error
	if res.fallible {
		if last := out[len(out)-1]; !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}

// Resolver returns the named resolver as a standalone closure, or false when
// the composite has no such resolver.
func (c *Composite) Resolver(field string) (func(ctx any, args ...any) (any, error), bool) {
	if _, ok := c.table[field]; !ok {
		return nil, false
	}
	return func(ctx any, args ...any) (any, error) {
		return c.Call(ctx, field, args...)
	}, true
}

func argValue(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), want)
	}
	return v, nil
}
