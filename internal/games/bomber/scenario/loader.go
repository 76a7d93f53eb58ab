package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Loader reads scenario files from a filesystem tree.
type Loader struct {
	FS fs.FS
}

// NewLoader creates a loader rooted at a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{FS: os.DirFS(root)}
}

// Builtin returns a loader over the scenarios shipped with the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return &Loader{FS: sub}
}

// LoadAll loads every scenario file below the root, sorted by ID.
// Files that fail to parse are skipped.
func (l *Loader) LoadAll() ([]*Scenario, error) {
	var out []*Scenario
	err := fs.WalkDir(l.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(path) {
			return nil
		}
		s, err := l.LoadFile(path)
		if err != nil {
			return nil
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scenario: walking scenarios: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// LoadFile loads a single scenario file relative to the root.
func (l *Loader) LoadFile(path string) (*Scenario, error) {
	data, err := fs.ReadFile(l.FS, path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	s.FilePath = path
	return s, nil
}

// LoadByID returns the scenario with the given ID.
func (l *Loader) LoadByID(id string) (*Scenario, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("scenario: not found: %s", id)
}

// Load resolves ref as a file path when it names a YAML file on disk and
// as a built-in scenario ID otherwise.
func Load(ref string) (*Scenario, error) {
	if isSupportedExtension(ref) {
		if _, err := os.Stat(ref); err == nil {
			return NewLoader(filepath.Dir(ref)).LoadFile(filepath.Base(ref))
		}
	}
	return Builtin().LoadByID(ref)
}

func isSupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
