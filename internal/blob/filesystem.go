package blob

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FSStore keeps objects as files under root/<bucket>/<key>.
// Used for local dry runs and tests.
type FSStore struct {
	root string
}

var _ Store = (*FSStore)(nil)

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) List(ctx context.Context, loc Location) ([]Object, error) {
	bucketDir := filepath.Join(s.root, loc.Bucket)

	var objects []Object

	err := filepath.WalkDir(bucketDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(bucketDir, path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, loc.Key) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		objects = append(objects, Object{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking bucket %s", loc.Bucket)
	}

	return objects, nil
}

func (s *FSStore) Get(ctx context.Context, loc Location) ([]byte, error) {
	b, err := os.ReadFile(s.path(loc))
	if err != nil {
		return nil, errors.Wrapf(err, "reading object %s", loc)
	}

	return b, nil
}

func (s *FSStore) Put(ctx context.Context, loc Location, body []byte) error {
	path := s.path(loc)

	if err := os.MkdirAll(filepath.Dir(path), 0744); err != nil {
		return errors.Wrap(err, "mkdir all")
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return errors.Wrap(err, "writing to file")
	}

	return nil
}

func (s *FSStore) path(loc Location) string {
	return filepath.Join(s.root, loc.Bucket, filepath.FromSlash(loc.Key))
}
