// Package snapshot persists one RepositorySnapshot JSON file per repository.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

const fileExt = ".json"

// ErrCorrupt is returned when a snapshot file exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt snapshot")

// Store reads and writes snapshots under Dir as {owner}_{name}.json.
// Jobs are partitioned one per repository, so no file locking is done.
type Store struct {
	Dir string
}

var _ contract.SnapshotStore = &Store{} // Compile-time check

// Entry pairs a repository with its loaded snapshot.
type Entry struct {
	Ref      schema.RepositoryRef
	Snapshot *schema.RepositorySnapshot
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the snapshot file path for ref.
func (s *Store) Path(ref schema.RepositoryRef) string {
	return filepath.Join(s.Dir, ref.FileStem()+fileExt)
}

// Exists reports whether a snapshot file is present for ref.
func (s *Store) Exists(ref schema.RepositoryRef) bool {
	info, err := os.Stat(s.Path(ref))
	return err == nil && info.Mode().IsRegular()
}

// Load returns the snapshot for ref, or nil when none has been saved yet.
func (s *Store) Load(ref schema.RepositoryRef) (*schema.RepositorySnapshot, error) {
	path := s.Path(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap schema.RepositorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
	}
	snap.EnsureMaps()
	return &snap, nil
}

// Save writes snap atomically: a temp file in the same directory is synced
// and renamed over the previous snapshot.
func (s *Store) Save(ref schema.RepositoryRef, snap *schema.RepositorySnapshot) error {
	if snap == nil {
		return fmt.Errorf("refusing to save nil snapshot for %s", ref)
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", s.Dir, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+ref.FileStem()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write snapshot %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync snapshot %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close snapshot %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod snapshot %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path(ref)); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace snapshot %s: %w", s.Path(ref), err)
	}

	contract.Logger.WithField("repo", ref.FullName()).Debug("snapshot saved")
	return nil
}

// Encode renders a snapshot as compact JSON. Map keys come out sorted, so
// equal snapshots always encode to identical bytes.
func Encode(snap *schema.RepositorySnapshot) ([]byte, error) {
	clone := *snap
	clone.EnsureMaps()
	data, err := json.Marshal(&clone)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// List returns every repository with a snapshot file, sorted by file name.
func (s *Store) List() ([]schema.RepositoryRef, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list data dir %s: %w", s.Dir, err)
	}

	var refs []schema.RepositoryRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ref, ok := ParseFileStem(strings.TrimSuffix(name, fileExt))
		if !ok {
			contract.LogWarn("Skipping snapshot file", fmt.Errorf("cannot parse %q as owner_name", name))
			continue
		}
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, func(a, b schema.RepositoryRef) int {
		return strings.Compare(a.FileStem(), b.FileStem())
	})
	return refs, nil
}

// LoadAll loads every listed snapshot. Unreadable files are skipped with a warning.
func (s *Store) LoadAll() ([]Entry, error) {
	refs, err := s.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(refs))
	for _, ref := range refs {
		snap, err := s.Load(ref)
		if err != nil {
			contract.LogWarn("Skipping snapshot", err)
			continue
		}
		if snap == nil {
			continue
		}
		entries = append(entries, Entry{Ref: ref, Snapshot: snap})
	}
	return entries, nil
}

// ParseFileStem splits "owner_name" on the first underscore.
// GitHub owners cannot contain underscores, so names keep theirs.
func ParseFileStem(stem string) (schema.RepositoryRef, bool) {
	owner, name, ok := strings.Cut(stem, "_")
	if !ok || owner == "" || name == "" {
		return schema.RepositoryRef{}, false
	}
	return schema.RepositoryRef{Owner: owner, Name: name}, true
}
