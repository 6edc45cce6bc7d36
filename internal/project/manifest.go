// Package project reads the optional swell.toml manifest that
// configures batch processing: the package name, which lowering passes
// run, and snapshot output settings. Commands work without a manifest;
// everything has a default.
package project

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Manifest is the resolved configuration after defaults are applied.
type Manifest struct {
	Package  PackageSection
	Lower    LowerSection
	Snapshot SnapshotSection
}

// PackageSection mirrors [package].
type PackageSection struct {
	Name string `toml:"name"`
}

// LowerSection mirrors [lower]. Both passes run unless switched off.
type LowerSection struct {
	Devirtualize bool `toml:"devirtualize"`
	StaticCalls  bool `toml:"static_calls"`
}

// SnapshotSection mirrors [snapshot].
type SnapshotSection struct {
	// OutDir receives lowered snapshots; empty writes next to the input.
	OutDir string `toml:"out_dir"`
	// MaxDiagnostics caps every diagnostic bag a command allocates.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Default returns the configuration used when no manifest exists.
func Default() Manifest {
	return Manifest{
		Lower: LowerSection{
			Devirtualize: true,
			StaticCalls:  true,
		},
		Snapshot: SnapshotSection{
			MaxDiagnostics: 64,
		},
	}
}

type manifestFile struct {
	Package  PackageSection  `toml:"package"`
	Lower    LowerSection    `toml:"lower"`
	Snapshot SnapshotSection `toml:"snapshot"`
}

// Load parses a swell.toml. Sections and keys the file leaves out keep
// their defaults; only keys the file actually defines override them.
func Load(path string) (Manifest, error) {
	m := Default()
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("package", "name") {
		name := strings.TrimSpace(cfg.Package.Name)
		if !IsValidPackageName(name) {
			return Manifest{}, fmt.Errorf("%s: invalid [package].name %q", path, cfg.Package.Name)
		}
		m.Package.Name = name
	}
	if meta.IsDefined("lower", "devirtualize") {
		m.Lower.Devirtualize = cfg.Lower.Devirtualize
	}
	if meta.IsDefined("lower", "static_calls") {
		m.Lower.StaticCalls = cfg.Lower.StaticCalls
	}
	if meta.IsDefined("snapshot", "out_dir") {
		m.Snapshot.OutDir = strings.TrimSpace(cfg.Snapshot.OutDir)
	}
	if meta.IsDefined("snapshot", "max_diagnostics") {
		if cfg.Snapshot.MaxDiagnostics <= 0 {
			return Manifest{}, fmt.Errorf("%s: [snapshot].max_diagnostics must be positive", path)
		}
		m.Snapshot.MaxDiagnostics = cfg.Snapshot.MaxDiagnostics
	}
	return m, nil
}

// LoadFrom walks up from startDir and loads the nearest manifest.
// ok is false when none exists; the returned manifest is then Default.
func LoadFrom(startDir string) (Manifest, bool, error) {
	path, ok, err := FindSwellToml(startDir)
	if err != nil || !ok {
		return Default(), ok, err
	}
	m, err := Load(path)
	if err != nil {
		return Default(), true, err
	}
	return m, true, nil
}

// IsValidPackageName reports whether name is an ASCII identifier:
// letter or underscore first, letters, digits and underscores after.
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
