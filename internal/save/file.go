package save

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps one JSON file per slot in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

func (s *FileStore) Save(ctx context.Context, slot string, snap *Snapshot) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := atomicWrite(s.path(slot), data, 0o644); err != nil {
		return fmt.Errorf("saving slot %s: %w", slot, err)
	}
	slog.InfoContext(ctx, "game saved", "slot", slot, "day", snap.State.Day)
	return nil
}

func (s *FileStore) Load(ctx context.Context, slot string) (*Snapshot, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return Decode(data)
}

// List describes every readable slot. Corrupt files are skipped.
func (s *FileStore) List(ctx context.Context) ([]SlotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	var out []SlotInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		slot := strings.TrimSuffix(e.Name(), ".json")
		snap, err := s.Load(ctx, slot)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable save", "slot", slot, "error", err)
			continue
		}
		out = append(out, SlotInfo{Slot: slot, Day: snap.State.Day, SavedAt: snap.SavedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
