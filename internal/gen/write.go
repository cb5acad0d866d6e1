package gen

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/gqlcompose/gqlcompose/internal/compose"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
	"github.com/gqlcompose/gqlcompose/internal/eventbus"
	"github.com/gqlcompose/gqlcompose/internal/events"
)

// WriteAll renders and writes every generated file of the project below
// root: one parts capability file per package declaring parts, and one
// composite file per dispatch table. It returns the written paths relative
// to root.
func WriteAll(ctx context.Context, fsys afero.Fs, root string, proj *descriptor.Project, tables []*compose.Table) ([]string, error) {
	var written []string

	ids := make([]descriptor.PackageID, 0, len(proj.Packages))
	for id := range proj.Packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		pkg := proj.Packages[id]
		src, err := RenderParts(pkg)
		if err != nil {
			return written, err
		}
		if src == nil {
			continue
		}
		rel := path.Join(pkg.Dir, PartsFile)
		if err := writeFile(ctx, fsys, root, rel, "", src); err != nil {
			return written, err
		}
		written = append(written, rel)
	}

	for _, table := range tables {
		pkg := proj.Packages[table.Composite.Package]
		src, err := RenderComposite(pkg, table)
		if err != nil {
			return written, err
		}
		rel := path.Join(pkg.Dir, CompositeFile(table.Composite))
		if err := writeFile(ctx, fsys, root, rel, table.Composite.Name, src); err != nil {
			return written, err
		}
		written = append(written, rel)
	}
	return written, nil
}

func writeFile(ctx context.Context, fsys afero.Fs, root, rel, composite string, src []byte) error {
	eventbus.Publish(ctx, events.RenderStart{Composite: composite, File: rel})
	start := time.Now()
	err := afero.WriteFile(fsys, filepath.Join(root, filepath.FromSlash(rel)), src, 0644)
	eventbus.Publish(ctx, events.RenderFinish{
		Composite: composite,
		File:      rel,
		Bytes:     len(src),
		Err:       err,
		Duration:  time.Since(start),
	})
	return err
}
