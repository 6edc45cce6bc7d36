package irpack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"swell/internal/ir"
)

// Save writes the module snapshot to path atomically: encode into a temp
// file in the destination directory, then rename over the target, so a
// crash mid-write never leaves a truncated snapshot behind.
func Save(path string, m *ir.Module) error {
	snap, err := Pack(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// A no-op once the rename landed.
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads a snapshot from path and rebuilds the module. A missing
// file surfaces unwrapped, so callers can test for it with
// errors.Is(err, os.ErrNotExist).
func Load(path string) (*ir.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("irpack: decode %s: %w", path, err)
	}
	return Unpack(&snap)
}
