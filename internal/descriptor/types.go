package descriptor

import "sort"

// GeneratedSuffix marks files emitted by the generator. Discovery skips them
// so a second run never treats generated forwarders as hand-written resolvers.
const GeneratedSuffix = ".gen.go"

// Project holds every part descriptor and composite specification found in
// one scan. It is re-derived on every run and never persisted.
type Project struct {
	Packages map[PackageID]*Package `json:"packages"`
}

// PackageID is the package directory path relative to the scan root,
// "." for the root itself.
type PackageID string

type Package struct {
	ID   PackageID `json:"id"`
	Name string    `json:"name"`
	Dir  string    `json:"dir"`

	Parts      map[string]*Part `json:"parts"`
	Composites []*Composite     `json:"composites"`
}

// PartNames returns the names of the package's annotated parts in sorted order.
func (p *Package) PartNames() []string {
	names := make([]string, 0, len(p.Parts))
	for name := range p.Parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Part describes one annotated partial object: its resolver set and the
// context type its resolvers agree on.
type Part struct {
	Name    string    `json:"name"`
	Package PackageID `json:"package"`
	File    string    `json:"file"`
	Line    int       `json:"line"`

	// Context is the inferred context type expression. Empty means the part
	// is context-unconstrained.
	Context   string      `json:"context,omitempty"`
	Resolvers []*Resolver `json:"resolvers"`

	// Imports maps package identifiers referenced by the resolver signatures
	// to their import paths.
	Imports map[string]string `json:"imports,omitempty"`
}

// Resolver is one named, typed resolver signature. Immutable once built.
type Resolver struct {
	// Name is the resolver's field name: the method name with its first rune
	// lowered.
	Name   string `json:"name"`
	Method string `json:"method"`

	// Context is the declared type of the leading ctx parameter, "" if the
	// method takes none.
	Context string   `json:"context,omitempty"`
	Params  []*Param `json:"params,omitempty"`

	// Results holds the result type expressions, excluding a trailing error.
	Results []string `json:"results,omitempty"`
	// Fallible is set when the method's last result is an error.
	Fallible bool `json:"fallible,omitempty"`

	PtrReceiver bool   `json:"ptrReceiver,omitempty"`
	Doc         string `json:"doc,omitempty"`

	file string
	line int
}

type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Composite is one composition request: an ordered part list plus naming,
// visibility and context options.
type Composite struct {
	// Name is the generated type name, visibility qualifier already applied.
	Name     string    `json:"name"`
	Exported bool      `json:"exported"`
	Package  PackageID `json:"package"`
	File     string    `json:"file"`
	Line     int       `json:"line"`

	// Context is the explicit context override, "" if none.
	Context string   `json:"context,omitempty"`
	Parts   []string `json:"parts"`

	// Imports maps package identifiers referenced by the context override
	// to their import paths.
	Imports map[string]string `json:"imports,omitempty"`
}
