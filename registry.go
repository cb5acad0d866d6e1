package gqlcompose

import (
	"fmt"
	"reflect"
	"sync"
	"unicode"
	"unicode/utf8"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// resolverSpec is one resolver derived from a part method.
type resolverSpec struct {
	field    string
	method   reflect.Method // enumerated on the part's pointer type
	hasCtx   bool
	ctx      reflect.Type
	numArgs  int
	results  int
	fallible bool
}

// partSpec is the runtime part descriptor.
type partSpec struct {
	name      string
	typ       reflect.Type // struct type
	ctx       reflect.Type // nil when unconstrained
	resolvers []*resolverSpec
}

// Registry collects part descriptors at program startup and composes them on
// demand. It is the registration-time counterpart of the code generator.
type Registry struct {
	mu    sync.RWMutex
	parts map[string]*partSpec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{parts: make(map[string]*partSpec)}
}

// Register derives a resolver descriptor for each given part value. A part
// must be a named, fieldless struct; each exported method is a resolver whose
// first parameter, when present, is the context. Registering the same part
// type twice is a no-op.
func (r *Registry) Register(parts ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, part := range parts {
		if err := r.register(part); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(part any) error {
	t := reflect.TypeOf(part)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t.Name() == "" {
		return &InvalidDeclarationError{Reason: fmt.Sprintf("part %v must be a named struct type", t)}
	}
	if t.NumField() > 0 {
		return &InvalidDeclarationError{
			Reason: fmt.Sprintf("part %s must not declare fields; resolver state belongs in the context", t.Name()),
		}
	}
	if prev, ok := r.parts[t.Name()]; ok {
		if prev.typ == t {
			return nil
		}
		return &InvalidDeclarationError{Reason: fmt.Sprintf("part name %q already registered", t.Name())}
	}

	spec := &partSpec{name: t.Name(), typ: t}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if m.Name == "ComposedFields" {
			continue
		}
		res, err := buildResolverSpec(t.Name(), m)
		if err != nil {
			return err
		}
		if res.hasCtx {
			if spec.ctx != nil && spec.ctx != res.ctx {
				return &InvalidDeclarationError{
					Reason: fmt.Sprintf("part %s resolvers disagree on context type: %s vs %s", t.Name(), spec.ctx, res.ctx),
				}
			}
			spec.ctx = res.ctx
		}
		spec.resolvers = append(spec.resolvers, res)
	}
	r.parts[t.Name()] = spec
	return nil
}

func buildResolverSpec(part string, m reflect.Method) (*resolverSpec, error) {
	mt := m.Type
	if mt.IsVariadic() {
		return nil, &InvalidDeclarationError{Reason: fmt.Sprintf("resolver %s.%s must not be variadic", part, m.Name)}
	}

	res := &resolverSpec{field: runtimeFieldName(m.Name), method: m}
	if mt.NumIn() > 1 { // In(0) is the receiver
		res.hasCtx = true
		res.ctx = mt.In(1)
		res.numArgs = mt.NumIn() - 2
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errType {
			res.fallible = true
		} else {
			res.results = 1
		}
	case 2:
		if mt.Out(1) != errType {
			return nil, &InvalidDeclarationError{
				Reason: fmt.Sprintf("resolver %s.%s must return a value, (value, error), or error", part, m.Name),
			}
		}
		res.results = 1
		res.fallible = true
	default:
		return nil, &InvalidDeclarationError{
			Reason: fmt.Sprintf("resolver %s.%s must return a value, (value, error), or error", part, m.Name),
		}
	}
	return res, nil
}

type composeOptions struct {
	ctx reflect.Type
}

// ComposeOption configures a composition request.
type ComposeOption func(*composeOptions)

// WithContextType overrides the composite's context type. Every part's
// resolvers must accept a value of this type.
func WithContextType(t reflect.Type) ComposeOption {
	return func(o *composeOptions) { o.ctx = t }
}

// WithContext is WithContextType with the type taken from a sample value.
func WithContext(sample any) ComposeOption {
	return WithContextType(reflect.TypeOf(sample))
}

// Compose merges the named parts into a Composite. Parts are merged in the
// given order; the resolver sets must be pairwise disjoint and the parts must
// agree on (or be overridden to) one context type. Composing does not mutate
// the registered parts; a part may appear in any number of composites.
func (r *Registry) Compose(name string, parts []string, opts ...ComposeOption) (*Composite, error) {
	var options composeOptions
	for _, opt := range opts {
		opt(&options)
	}
	if len(parts) == 0 {
		return nil, &InvalidDeclarationError{Reason: fmt.Sprintf("composite %q must name at least one part", name)}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	specs := make([]*partSpec, 0, len(parts))
	for _, pn := range parts {
		if seen[pn] {
			return nil, &InvalidDeclarationError{Reason: fmt.Sprintf("part %q listed more than once in composite %q", pn, name)}
		}
		seen[pn] = true
		spec, ok := r.parts[pn]
		if !ok {
			return nil, &UnknownPartError{Part: pn}
		}
		specs = append(specs, spec)
	}

	context, err := unifyContext(specs, options.ctx)
	if err != nil {
		return nil, err
	}

	c := &Composite{
		name:    name,
		context: context,
		table:   make(map[string]*dispatchEntry),
	}
	for _, spec := range specs {
		for _, res := range spec.resolvers {
			if prev, ok := c.table[res.field]; ok {
				return nil, &DuplicateResolverError{Resolver: res.field, First: prev.part.name, Second: spec.name}
			}
			c.table[res.field] = &dispatchEntry{part: spec, res: res}
			c.fields = append(c.fields, res.field)
		}
	}
	return c, nil
}

// unifyContext settles the governing context type: the override when given
// (checked against every constrained part), otherwise the parts' single
// shared context type.
func unifyContext(specs []*partSpec, override reflect.Type) (reflect.Type, error) {
	if override != nil {
		mismatch := make(map[string]string)
		for _, spec := range specs {
			if spec.ctx != nil && spec.ctx != override && !override.AssignableTo(spec.ctx) {
				mismatch[spec.name] = spec.ctx.String()
			}
		}
		if len(mismatch) > 0 {
			mismatch["<override>"] = override.String()
			return nil, &ContextMismatchError{Contexts: mismatch}
		}
		return override, nil
	}

	var context reflect.Type
	constrained := make(map[string]string)
	distinct := make(map[reflect.Type]bool)
	for _, spec := range specs {
		if spec.ctx == nil {
			continue
		}
		constrained[spec.name] = spec.ctx.String()
		distinct[spec.ctx] = true
		context = spec.ctx
	}
	if len(distinct) > 1 {
		return nil, &ContextMismatchError{Contexts: constrained}
	}
	return context, nil
}

func runtimeFieldName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	return string(unicode.ToLower(r)) + method[size:]
}
