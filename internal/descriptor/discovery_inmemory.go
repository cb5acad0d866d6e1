package descriptor

import (
	"context"
	"fmt"
	"path"
	"sort"
)

type InMemorySource struct {
	// slash-separated package directory, "" or "." for the root package
	Package string
	// file name without the .go extension
	Name    string
	Content string
}

// InMemoryDiscovery is a test implementation of Discovery that stores data in memory.
type InMemoryDiscovery struct {
	pkgs     map[PackageID]*PackageMetadata
	contents map[string]string
}

// NewInMemoryDiscovery creates a new InMemoryDiscovery instance.
func NewInMemoryDiscovery(srcs []InMemorySource) *InMemoryDiscovery {
	discovery := &InMemoryDiscovery{
		pkgs:     make(map[PackageID]*PackageMetadata),
		contents: make(map[string]string),
	}

	for _, src := range srcs {
		dir := src.Package
		if dir == "" {
			dir = "."
		}
		id := PackageID(dir)
		pkg, ok := discovery.pkgs[id]
		if !ok {
			name := path.Base(dir)
			if dir == "." {
				name = "main"
			}
			pkg = &PackageMetadata{ID: id, Name: name, Dir: dir}
			discovery.pkgs[id] = pkg
		}
		file := src.Name + ".go"
		pkg.Files = append(pkg.Files, file)
		discovery.contents[string(id)+"/"+file] = src.Content
	}
	for _, pkg := range discovery.pkgs {
		sort.Strings(pkg.Files)
	}
	return discovery
}

// ListMetadata implements Discovery interface.
func (d *InMemoryDiscovery) ListMetadata(ctx context.Context) ([]*PackageMetadata, error) {
	pkgs := make([]*PackageMetadata, 0, len(d.pkgs))
	for _, pkg := range d.pkgs {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}

// ReadSource implements Discovery interface.
func (d *InMemoryDiscovery) ReadSource(ctx context.Context, id PackageID, file string) (string, error) {
	content, exists := d.contents[string(id)+"/"+file]
	if !exists {
		return "", fmt.Errorf("source %q not found in package %q", file, id)
	}
	return content, nil
}
