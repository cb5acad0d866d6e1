package gqlcompose

// Object is the resolver-collection capability shared by annotated parts and
// generated composites. The generator emits the ComposedFields method for
// every part and composite; runtime composites implement it directly.
type Object interface {
	// ComposedFields returns the resolver field names of this object.
	ComposedFields() []string
}
