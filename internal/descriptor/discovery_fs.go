package descriptor

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileSystemDiscovery implements Discovery over a directory tree of Go sources.
type FileSystemDiscovery struct {
	fs   afero.Fs
	root string
	pkgs map[PackageID]*PackageMetadata
}

// NewFileSystemDiscovery walks rootDir collecting Go files grouped by
// directory. Test files, generated files and directories named "testdata",
// "vendor" or starting with "." or "_" are skipped.
func NewFileSystemDiscovery(ctx context.Context, fsys afero.Fs, rootDir string) (*FileSystemDiscovery, error) {
	discovery := &FileSystemDiscovery{
		fs:   fsys,
		root: rootDir,
		pkgs: make(map[PackageID]*PackageMetadata),
	}

	err := afero.Walk(fsys, rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != rootDir && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		name := info.Name()
		if !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") ||
			strings.HasSuffix(name, GeneratedSuffix) {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", p, err)
		}
		relPath = filepath.ToSlash(relPath)
		dir := path.Dir(relPath)

		id := PackageID(dir)
		pkg, ok := discovery.pkgs[id]
		if !ok {
			pkg = &PackageMetadata{
				ID:   id,
				Name: packageNameForDir(dir, rootDir),
				Dir:  dir,
			}
			discovery.pkgs[id] = pkg
		}
		pkg.Files = append(pkg.Files, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	for _, pkg := range discovery.pkgs {
		sort.Strings(pkg.Files)
	}
	return discovery, nil
}

func skipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func packageNameForDir(dir, rootDir string) string {
	if dir == "." {
		return path.Base(filepath.ToSlash(rootDir))
	}
	return path.Base(dir)
}

// ListMetadata returns the packages discovered under the root.
func (d *FileSystemDiscovery) ListMetadata(ctx context.Context) ([]*PackageMetadata, error) {
	pkgs := make([]*PackageMetadata, 0, len(d.pkgs))
	for _, pkg := range d.pkgs {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
	return pkgs, nil
}

// ReadSource reads one discovered Go source file.
func (d *FileSystemDiscovery) ReadSource(ctx context.Context, id PackageID, file string) (string, error) {
	pkg, ok := d.pkgs[id]
	if !ok {
		return "", fmt.Errorf("package %q not found", id)
	}
	fp := filepath.Join(d.root, filepath.FromSlash(pkg.Dir), file)
	content, err := afero.ReadFile(d.fs, fp)
	if err != nil {
		return "", fmt.Errorf("failed to read source %q: %w", fp, err)
	}
	return string(content), nil
}

// Load is a convenience function that scans rootDir on the OS filesystem and
// builds the project.
func Load(rootDir string) (*Project, error) {
	return LoadFS(afero.NewOsFs(), rootDir)
}

// LoadFS scans rootDir on the given filesystem and builds the project.
func LoadFS(fsys afero.Fs, rootDir string) (*Project, error) {
	discovery, err := NewFileSystemDiscovery(context.Background(), fsys, rootDir)
	if err != nil {
		return nil, err
	}
	return Build(context.Background(), discovery)
}
