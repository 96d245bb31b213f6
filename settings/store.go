// server/settings/store.go
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ViniZap4/carnet-server/domain"
)

// FileName is the per-root settings file.
const FileName = "carnet.config.json"

// Store keeps the UI preferences of each note root inside the root itself.
type Store struct {
	fs afero.Fs
}

func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Load returns the settings saved in root. Missing fields take their
// default; a missing or unparsable file yields the defaults.
func (s *Store) Load(root string) (domain.Settings, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	settings := domain.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.DefaultSettings(), nil
	}
	if !settings.ViewMode.Valid() {
		settings.ViewMode = domain.ViewEdit
	}
	return settings, nil
}

func (s *Store) Save(root string, settings domain.Settings) error {
	if !settings.ViewMode.Valid() {
		settings.ViewMode = domain.ViewEdit
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(root, FileName), data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
