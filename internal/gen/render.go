// Package gen renders composite types and part capability implementations as
// Go source. Output is deterministic and gofmt-formatted; a second run over
// the same descriptors produces byte-identical files.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"sort"
	"strings"

	"github.com/gqlcompose/gqlcompose/internal/compose"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
)

const header = "// Code generated by gqlcompose. DO NOT EDIT.\n\n"

// capabilityImport is the package providing the Object capability interface.
const capabilityImport = "github.com/gqlcompose/gqlcompose"

// PartsFile is the per-package file carrying the parts' capability methods.
const PartsFile = "gqlcompose_parts" + descriptor.GeneratedSuffix

// CompositeFile names the generated file of one composite.
func CompositeFile(comp *descriptor.Composite) string {
	return strings.ToLower(comp.Name) + "_gqlcompose" + descriptor.GeneratedSuffix
}

// RenderComposite renders the placeholder type and forwarding resolver
// methods of one merged dispatch table.
func RenderComposite(pkg *descriptor.Package, table *compose.Table) ([]byte, error) {
	comp := table.Composite

	imports, err := compositeImports(table)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	fmt.Fprintf(&buf, "package %s\n\n", pkg.Name)
	writeImports(&buf, imports)

	partNames := make([]string, 0, len(comp.Parts))
	partNames = append(partNames, comp.Parts...)
	fmt.Fprintf(&buf, "// %s merges the resolvers of %s.\n", comp.Name, joinNames(partNames))
	if table.Context != "" {
		fmt.Fprintf(&buf, "// Its resolvers share the context type %s.\n", table.Context)
	}
	fmt.Fprintf(&buf, "type %s struct{}\n\n", comp.Name)
	fmt.Fprintf(&buf, "var _ gqlcompose.Object = %s{}\n\n", comp.Name)

	for _, e := range table.Entries {
		writeForwarder(&buf, comp.Name, table.Context, e)
	}

	fmt.Fprintf(&buf, "// ComposedFields reports the resolver names merged into %s.\n", comp.Name)
	fmt.Fprintf(&buf, "func (%s) ComposedFields() []string {\n", comp.Name)
	fmt.Fprintf(&buf, "\treturn %s\n}\n", stringSliceLit(table.Fields()))

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w", comp.Name, err)
	}
	return src, nil
}

// RenderParts renders the capability methods of every annotated part of the
// package. It returns nil when the package declares no parts.
func RenderParts(pkg *descriptor.Package) ([]byte, error) {
	names := pkg.PartNames()
	if len(names) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	fmt.Fprintf(&buf, "package %s\n\n", pkg.Name)
	writeImports(&buf, map[string]string{"gqlcompose": capabilityImport})

	for i, name := range names {
		part := pkg.Parts[name]
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "var _ gqlcompose.Object = %s{}\n\n", name)
		fmt.Fprintf(&buf, "// ComposedFields reports the resolver names declared by %s.\n", name)
		fmt.Fprintf(&buf, "func (%s) ComposedFields() []string {\n", name)
		fields := make([]string, 0, len(part.Resolvers))
		for _, res := range part.Resolvers {
			fields = append(fields, res.Name)
		}
		fmt.Fprintf(&buf, "\treturn %s\n}\n", stringSliceLit(fields))
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated parts file for package %s: %w", pkg.Name, err)
	}
	return src, nil
}

// compositeImports computes the import block of a composite file from the
// type expressions the forwarders actually emit. Imports bound to a context
// type displaced by an override must not leak into the generated file.
func compositeImports(table *compose.Table) (map[string]string, error) {
	comp := table.Composite

	candidates := make(map[string]string)
	add := func(m map[string]string) error {
		for name, p := range m {
			if prev, ok := candidates[name]; ok && prev != p {
				return fmt.Errorf("composite %s: conflicting import %q: %s vs %s", comp.Name, name, prev, p)
			}
			candidates[name] = p
		}
		return nil
	}
	for _, e := range table.Entries {
		if err := add(e.Part.Imports); err != nil {
			return nil, err
		}
	}
	if err := add(comp.Imports); err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	collect := func(typeExpr string) {
		expr, err := parser.ParseExpr(typeExpr)
		if err != nil {
			return
		}
		ast.Inspect(expr, func(n ast.Node) bool {
			if se, ok := n.(*ast.SelectorExpr); ok {
				if x, ok := se.X.(*ast.Ident); ok {
					used[x.Name] = true
				}
			}
			return true
		})
	}
	for _, e := range table.Entries {
		res := e.Resolver
		if res.Context != "" {
			if table.Context != "" {
				collect(table.Context)
			} else {
				collect(res.Context)
			}
		}
		for _, p := range res.Params {
			collect(p.Type)
		}
		for _, r := range res.Results {
			collect(r)
		}
	}

	imports := map[string]string{"gqlcompose": capabilityImport}
	for name := range used {
		if p, ok := candidates[name]; ok {
			imports[name] = p
		}
	}
	return imports, nil
}

// writeForwarder emits one forwarding resolver method. The signature is the
// owning part's, with the context parameter retyped to the governing context.
func writeForwarder(buf *bytes.Buffer, compName, context string, e *compose.Entry) {
	res := e.Resolver

	if res.Doc != "" {
		for _, line := range strings.Split(res.Doc, "\n") {
			fmt.Fprintf(buf, "// %s\n", line)
		}
		fmt.Fprintf(buf, "//\n// Forwarded to %s.\n", e.Part.Name)
	} else {
		fmt.Fprintf(buf, "// %s forwards to %s.\n", res.Method, e.Part.Name)
	}

	var params, args []string
	if res.Context != "" {
		ctxType := context
		if ctxType == "" {
			ctxType = res.Context
		}
		params = append(params, "ctx "+ctxType)
		args = append(args, "ctx")
	}
	for _, p := range res.Params {
		params = append(params, p.Name+" "+p.Type)
		args = append(args, p.Name)
	}

	fmt.Fprintf(buf, "func (%s) %s(%s)%s {\n", compName, res.Method, strings.Join(params, ", "), resultsClause(res))

	recv := e.Part.Name + "{}"
	if res.PtrReceiver {
		recv = "(&" + e.Part.Name + "{})"
	}
	call := fmt.Sprintf("%s.%s(%s)", recv, res.Method, strings.Join(args, ", "))
	if len(res.Results) > 0 || res.Fallible {
		fmt.Fprintf(buf, "\treturn %s\n}\n\n", call)
	} else {
		fmt.Fprintf(buf, "\t%s\n}\n\n", call)
	}
}

func resultsClause(res *descriptor.Resolver) string {
	results := make([]string, 0, len(res.Results)+1)
	results = append(results, res.Results...)
	if res.Fallible {
		results = append(results, "error")
	}
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}

func writeImports(buf *bytes.Buffer, imports map[string]string) {
	type imp struct{ name, path string }
	imps := make([]imp, 0, len(imports))
	for name, p := range imports {
		imps = append(imps, imp{name: name, path: p})
	}
	sort.Slice(imps, func(i, j int) bool { return imps[i].path < imps[j].path })

	buf.WriteString("import (\n")
	for _, im := range imps {
		if im.name == descriptor.ImportBaseName(im.path) {
			fmt.Fprintf(buf, "\t%q\n", im.path)
		} else {
			fmt.Fprintf(buf, "\t%s %q\n", im.name, im.path)
		}
	}
	buf.WriteString(")\n\n")
}

func stringSliceLit(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
