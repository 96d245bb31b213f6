// server/settings/lastroot.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ViniZap4/carnet-server/domain"
)

// RootStore remembers the last note root across sessions.
type RootStore interface {
	LastRoot(ctx context.Context) (*string, error)
	// SaveLastRoot stores root; nil clears it.
	SaveLastRoot(ctx context.Context, root *string) error
}

// StateFileName is the process-wide state file kept in the state dir.
const StateFileName = "settings.json"

// FileRootStore keeps the last root in a JSON file outside any note root.
type FileRootStore struct {
	fs  afero.Fs
	dir string
}

func NewFileRootStore(fs afero.Fs, dir string) *FileRootStore {
	return &FileRootStore{fs: fs, dir: dir}
}

func (s *FileRootStore) path() string {
	return filepath.Join(s.dir, StateFileName)
}

func (s *FileRootStore) LastRoot(_ context.Context) (*string, error) {
	data, err := afero.ReadFile(s.fs, s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state domain.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, nil
	}
	if state.LastRoot != nil && *state.LastRoot == "" {
		return nil, nil
	}
	return state.LastRoot, nil
}

func (s *FileRootStore) SaveLastRoot(_ context.Context, root *string) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(domain.AppState{LastRoot: root}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(), data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
