package utils

import (
	"encoding/json"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/spf13/afero"
)

type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

func (fs Fs) WriteJSON(filePath string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}
	return fs.WriteRaw(filePath, b, true)
}

// WriteRaw saves bytes under filePath, creating parent directories as
// needed. When the file already exists and overwrite is false the call is a
// no-op.
func (fs Fs) WriteRaw(filePath string, data []byte, overwrite bool) error {
	if !overwrite {
		if exists, err := afero.Exists(fs.AppFs, filePath); err != nil {
			return xerrors.Errorf("failed to stat %s: %w", filePath, err)
		} else if exists {
			return nil
		}
	}

	if err := fs.AppFs.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return xerrors.Errorf("failed to create directory: %w", err)
	}

	f, err := fs.AppFs.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	return nil
}
