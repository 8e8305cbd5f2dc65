package repo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/loopspot/loopspot/internal/domain"
)

const recordExt = ".json"

// fileLoopStore writes one <escaped id>.json file per loop under dir.
// Writes go through a temp file and a rename so a reader never sees a
// half-written record.
type fileLoopStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a LoopStore rooted at dir. The directory is created on
// the first write.
func NewFileStore(dir string) LoopStore {
	return &fileLoopStore{dir: dir}
}

// recordPath maps an id to its file. PathEscape keeps separators out of the
// name; a leading dot is escaped too so the file is not skipped as hidden.
func (s *fileLoopStore) recordPath(id string) string {
	name := url.PathEscape(id)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return filepath.Join(s.dir, name+recordExt)
}

func (s *fileLoopStore) Get(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("repo.fileLoopStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.fileLoopStore.Get: %w", err)
	}
	return data, nil
}

func (s *fileLoopStore) Set(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("repo.fileLoopStore.Set: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".loop-*")
	if err != nil {
		return fmt.Errorf("repo.fileLoopStore.Set: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("repo.fileLoopStore.Set: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repo.fileLoopStore.Set: close: %w", err)
	}
	if err := os.Rename(tmpName, s.recordPath(id)); err != nil {
		return fmt.Errorf("repo.fileLoopStore.Set: rename: %w", err)
	}
	return nil
}

func (s *fileLoopStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("repo.fileLoopStore.Delete: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.fileLoopStore.Delete: %w", err)
	}
	return nil
}

func (s *fileLoopStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("repo.fileLoopStore.Keys: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, recordExt))
		if err != nil {
			continue // not written by this store
		}
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys, nil
}
