package descriptor

import (
	"context"
)

type PackageMetadata struct {
	ID    PackageID
	Name  string
	Dir   string
	Files []string
}

type Discovery interface {
	ListMetadata(ctx context.Context) ([]*PackageMetadata, error)
	ReadSource(ctx context.Context, id PackageID, file string) (string, error)
}
