package descriptor

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gqlcompose/gqlcompose/internal/directive"
)

type parsedFile struct {
	name    string
	ast     *ast.File
	imports map[string]string // local ident -> import path
}

type builder struct {
	fset       *token.FileSet
	packages   map[PackageID]*Package
	violations []*Violation
	discovery  Discovery

	// consumed holds part directive comments matched to a type declaration,
	// so the comment sweep can flag the orphaned ones.
	consumed map[*ast.Comment]bool
}

// Build scans all discovered sources into a Project. It fails with a
// ValidationError when any directive or part definition is invalid.
func Build(ctx context.Context, disc Discovery) (*Project, error) {
	b := &builder{
		fset:      token.NewFileSet(),
		packages:  make(map[PackageID]*Package),
		discovery: disc,
		consumed:  make(map[*ast.Comment]bool),
	}

	if err := b.build(ctx); err != nil {
		return nil, err
	}
	if len(b.violations) > 0 {
		return nil, ValidationError(b.violations)
	}
	return &Project{Packages: b.packages}, nil
}

func (b *builder) build(ctx context.Context) error {
	metas, err := b.discovery.ListMetadata(ctx)
	if err != nil {
		return err
	}

	for _, meta := range metas {
		files := make([]*parsedFile, 0, len(meta.Files))
		for _, name := range meta.Files {
			src, err := b.discovery.ReadSource(ctx, meta.ID, name)
			if err != nil {
				return err
			}
			fp := path.Join(meta.Dir, name)
			f, err := parser.ParseFile(b.fset, fp, src, parser.ParseComments)
			if err != nil {
				return fmt.Errorf("parse %s: %w", fp, err)
			}
			files = append(files, &parsedFile{name: name, ast: f, imports: fileImports(f)})
		}
		b.buildPackage(meta, files)
	}
	return nil
}

func (b *builder) buildPackage(meta *PackageMetadata, files []*parsedFile) {
	pkg := &Package{
		ID:    meta.ID,
		Name:  meta.Name,
		Dir:   meta.Dir,
		Parts: make(map[string]*Part),
	}
	if len(files) > 0 {
		pkg.Name = files[0].ast.Name.Name
	}

	typeNames := make(map[string]bool)
	for _, f := range files {
		b.collectParts(pkg, f, typeNames)
	}
	for _, f := range files {
		b.collectResolvers(pkg, f)
	}
	b.finalizeParts(pkg)
	for _, f := range files {
		b.collectComposites(pkg, f, typeNames)
	}

	if len(pkg.Parts) > 0 || len(pkg.Composites) > 0 {
		b.packages[pkg.ID] = pkg
	}
}

// collectParts recognizes part directives attached to type declarations.
func (b *builder) collectParts(pkg *Package, f *parsedFile, typeNames map[string]bool) {
	for _, decl := range f.ast.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			typeNames[ts.Name.Name] = true

			doc := ts.Doc
			if doc == nil {
				doc = gd.Doc
			}
			c := b.partDirective(doc)
			if c == nil {
				continue
			}
			b.consumed[c] = true
			pos := b.fset.Position(ts.Pos())

			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				b.addViolation(violationPartNotStruct(ts.Name.Name, pos))
				continue
			}
			if st.Fields.NumFields() > 0 {
				b.addViolation(violationPartHasFields(ts.Name.Name, pos))
				continue
			}
			if _, exists := pkg.Parts[ts.Name.Name]; exists {
				b.addViolation(violationDuplicatePart(ts.Name.Name, pos))
				continue
			}
			pkg.Parts[ts.Name.Name] = &Part{
				Name:    ts.Name.Name,
				Package: pkg.ID,
				File:    pos.Filename,
				Line:    pos.Line,
				Imports: make(map[string]string),
			}
		}
	}
}

// partDirective returns the part directive comment of doc, if any. A malformed
// body is a violation and the directive is discarded.
func (b *builder) partDirective(doc *ast.CommentGroup) *ast.Comment {
	if doc == nil {
		return nil
	}
	for _, c := range doc.List {
		kind, rest, ok := directive.Match(c.Text)
		if !ok || kind != directive.KindPart {
			continue
		}
		if err := directive.ParsePart(rest); err != nil {
			b.consumed[c] = true
			b.addViolation(violationBadDirective(err.Error(), b.fset.Position(c.Pos())))
			return nil
		}
		return c
	}
	return nil
}

// collectResolvers attaches exported methods of annotated parts as resolvers.
func (b *builder) collectResolvers(pkg *Package, f *parsedFile) {
	for _, decl := range f.ast.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || len(fd.Recv.List) != 1 {
			continue
		}
		recvType := fd.Recv.List[0].Type
		ptr := false
		if se, ok := recvType.(*ast.StarExpr); ok {
			ptr = true
			recvType = se.X
		}
		ident, ok := recvType.(*ast.Ident)
		if !ok {
			continue
		}
		part, ok := pkg.Parts[ident.Name]
		if !ok {
			continue
		}
		if !fd.Name.IsExported() || fd.Name.Name == "ComposedFields" {
			continue
		}
		b.buildResolver(part, fd, f, ptr)
	}
}

func (b *builder) buildResolver(part *Part, fd *ast.FuncDecl, f *parsedFile, ptr bool) {
	pos := b.fset.Position(fd.Pos())

	names, paramTypes, variadic := flattenFields(fd.Type.Params)
	if variadic {
		b.addViolation(violationVariadicResolver(part.Name, fd.Name.Name, pos))
		return
	}

	res := &Resolver{
		Name:        fieldName(fd.Name.Name),
		Method:      fd.Name.Name,
		PtrReceiver: ptr,
		file:        pos.Filename,
		line:        pos.Line,
	}
	if fd.Doc != nil {
		res.Doc = strings.TrimSpace(fd.Doc.Text())
	}

	start := 0
	if len(names) > 0 && names[0] == "ctx" {
		res.Context = types.ExprString(paramTypes[0])
		collectImports(part.Imports, f.imports, paramTypes[0])
		start = 1
	}
	for i := start; i < len(names); i++ {
		name := names[i]
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i-start)
		}
		res.Params = append(res.Params, &Param{Name: name, Type: types.ExprString(paramTypes[i])})
		collectImports(part.Imports, f.imports, paramTypes[i])
	}

	_, resultTypes, _ := flattenFields(fd.Type.Results)
	for i, rt := range resultTypes {
		expr := types.ExprString(rt)
		if i == len(resultTypes)-1 && expr == "error" {
			res.Fallible = true
			break
		}
		res.Results = append(res.Results, expr)
		collectImports(part.Imports, f.imports, rt)
	}

	part.Resolvers = append(part.Resolvers, res)
}

// finalizeParts orders resolver sets by source position and infers each
// part's context type.
func (b *builder) finalizeParts(pkg *Package) {
	for _, name := range pkg.PartNames() {
		part := pkg.Parts[name]
		sort.SliceStable(part.Resolvers, func(i, j int) bool {
			a, c := part.Resolvers[i], part.Resolvers[j]
			if a.file != c.file {
				return a.file < c.file
			}
			return a.line < c.line
		})

		contexts := make(map[string]string)
		for _, res := range part.Resolvers {
			if res.Context != "" {
				contexts[res.Method] = res.Context
			}
		}
		distinct := make(map[string]bool)
		for _, ctx := range contexts {
			distinct[ctx] = true
		}
		switch len(distinct) {
		case 0:
		case 1:
			for ctx := range distinct {
				part.Context = ctx
			}
		default:
			b.addViolation(violationPartContextAmbiguous(part.Name, contexts,
				token.Position{Filename: part.File, Line: part.Line}))
		}
		if len(part.Imports) == 0 {
			part.Imports = nil
		}
	}
}

// collectComposites parses object directives and sweeps for orphaned part
// directives.
func (b *builder) collectComposites(pkg *Package, f *parsedFile, typeNames map[string]bool) {
	seen := make(map[string]bool)
	for _, comp := range pkg.Composites {
		seen[comp.Name] = true
	}
	for _, cg := range f.ast.Comments {
		for _, c := range cg.List {
			kind, rest, ok := directive.Match(c.Text)
			if !ok {
				continue
			}
			pos := b.fset.Position(c.Pos())
			switch kind {
			case directive.KindPart:
				if !b.consumed[c] {
					b.addViolation(violationOrphanPartDirective(pos))
				}
			case directive.KindObject:
				obj, err := directive.ParseObject(rest)
				if err != nil {
					b.addViolation(violationBadDirective(err.Error(), pos))
					continue
				}
				name := obj.Export()
				if seen[name] {
					b.addViolation(violationDuplicateComposite(name, pos))
					continue
				}
				if typeNames[name] {
					b.addViolation(violationCompositeShadowsType(name, pos))
					continue
				}
				seen[name] = true

				comp := &Composite{
					Name:     name,
					Exported: isExported(name),
					Package:  pkg.ID,
					File:     pos.Filename,
					Line:     pos.Line,
					Context:  obj.Context,
					Parts:    obj.Parts,
				}
				if obj.Context != "" {
					expr, err := parser.ParseExpr(obj.Context)
					if err != nil {
						b.addViolation(violationBadDirective(
							fmt.Sprintf("invalid context type expression %q", obj.Context), pos))
						continue
					}
					imports := make(map[string]string)
					collectImports(imports, f.imports, expr)
					if len(imports) > 0 {
						comp.Imports = imports
					}
				}
				pkg.Composites = append(pkg.Composites, comp)
			default:
				b.addViolation(violationBadDirective(
					fmt.Sprintf("unknown directive %q", directive.Prefix+kind), pos))
			}
		}
	}
}

func (b *builder) addViolation(v ...*Violation) {
	b.violations = append(b.violations, v...)
}

// flattenFields expands a field list into one entry per declared name.
func flattenFields(fl *ast.FieldList) (names []string, exprs []ast.Expr, variadic bool) {
	if fl == nil {
		return nil, nil, false
	}
	for _, field := range fl.List {
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			variadic = true
		}
		if len(field.Names) == 0 {
			names = append(names, "")
			exprs = append(exprs, field.Type)
			continue
		}
		for _, n := range field.Names {
			names = append(names, n.Name)
			exprs = append(exprs, field.Type)
		}
	}
	return names, exprs, variadic
}

// collectImports records the import paths of package identifiers referenced
// by the type expression.
func collectImports(dst, fileImports map[string]string, expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		se, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if x, ok := se.X.(*ast.Ident); ok {
			if p, ok := fileImports[x.Name]; ok {
				dst[x.Name] = p
			}
		}
		return true
	})
}

// fileImports builds the local-identifier-to-path table of one file.
func fileImports(f *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if imp.Name != nil {
			name = imp.Name.Name
			if name == "_" || name == "." {
				continue
			}
		} else {
			name = ImportBaseName(p)
		}
		imports[name] = p
	}
	return imports
}

// ImportBaseName guesses the package identifier of an import path, handling
// major-version suffixes like ".../v2".
func ImportBaseName(p string) string {
	base := path.Base(p)
	if len(base) > 1 && base[0] == 'v' && strings.TrimLeft(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(p))
	}
	return base
}

// fieldName derives the resolver field name from a method name.
func fieldName(method string) string {
	r, size := utf8.DecodeRuneInString(method)
	return string(unicode.ToLower(r)) + method[size:]
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
