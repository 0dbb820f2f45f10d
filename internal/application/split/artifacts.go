package split

import (
	"context"
	"os"
	"path/filepath"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

// ArtifactStore persists the files of one run and returns their location.
type ArtifactStore interface {
	Put(ctx context.Context, runID, name string, data []byte) (string, error)
}

// LocalStore writes artifacts into a directory, one run per directory.
type LocalStore struct {
	Dir string
}

// NewLocalStore returns a store rooted at dir.  The directory is created on
// first write.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

// Put writes Dir/name.  runID is recorded in the manifest only.
func (s *LocalStore) Put(ctx context.Context, _ string, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to create output directory").
			WithDetailf("dir=%s", s.Dir)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to write artifact").
			WithDetailf("path=%s", path)
	}
	return path, nil
}

//Personal.AI order the ending
