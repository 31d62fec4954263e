package blob

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Location addresses an object, or a prefix of objects, in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseURI parses "s3://bucket/key".
func ParseURI(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return Location{}, errors.Errorf("unsupported scheme in %q", uri)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, errors.Errorf("empty bucket in %q", uri)
	}

	return Location{Bucket: bucket, Key: key}, nil
}

type Object struct {
	Key  string
	Size int64
}

type Lister interface {
	// List returns every object whose key starts with loc.Key.
	List(ctx context.Context, loc Location) ([]Object, error)
}

type Store interface {
	Lister
	Get(ctx context.Context, loc Location) ([]byte, error)
	Put(ctx context.Context, loc Location, body []byte) error
}
