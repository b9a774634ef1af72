package command

import (
	"fmt"
	"io"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/save"
)

const (
	SaveBackendNone   = ""
	SaveBackendFile   = "file"
	SaveBackendSQLite = "sqlite"

	DefaultSaveSlot = "main"
)

type SaveConfig struct {
	Backend  string `json:"backend"`
	Path     string `json:"path"`
	Slot     string `json:"slot"`
	Autosave bool   `json:"autosave"`
}

func (c *SaveConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case SaveBackendNone:
		if c.Autosave {
			el.Add(fmt.Errorf("save: autosave requires a backend"))
		}
		return el.Err()
	case SaveBackendFile, SaveBackendSQLite:
	default:
		el.Add(fmt.Errorf("save: unknown backend %q", c.Backend))
	}

	if c.Path == "" {
		el.Add(fmt.Errorf("save: path is required"))
	}
	if err := save.ValidateSlot(c.slot()); err != nil {
		el.Add(fmt.Errorf("save: %w", err))
	}

	return el.Err()
}

func (c *SaveConfig) slot() string {
	if c.Slot == "" {
		return DefaultSaveSlot
	}
	return c.Slot
}

// buildStore opens the configured store. The closer is nil when there is
// nothing to release.
func (c *SaveConfig) buildStore() (save.Store, io.Closer, error) {
	switch c.Backend {
	case SaveBackendFile:
		s, err := save.NewFileStore(c.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case SaveBackendSQLite:
		s, err := save.OpenSQLite(c.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, nil
	}
}
