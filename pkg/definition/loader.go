package definition

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-multiform/pkg/model"
)

// Store holds definitions in load order. File order is lexical by path and
// forms keep their order within a file.
type Store struct {
	names       []string
	definitions map[string]model.FormDefinition
	sources     map[string]string
}

type documentFile struct {
	Forms []model.FormDefinition `json:"forms" yaml:"forms"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		definitions: make(map[string]model.FormDefinition),
		sources:     make(map[string]string),
	}
}

// LoadFS walks fsys and parses every .yaml, .yml and .json file. Duplicate
// form names across files are rejected.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("definition: read %s: %w", path, err)
		}
		defs, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			if err := store.Add(def, path); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

// Parse decodes a single document. source is only used in error messages.
func Parse(data []byte, source string) ([]model.FormDefinition, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("definition: file %s is empty", source)
	}
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("definition: parse %s: %w", source, err)
	}
	if len(doc.Forms) == 0 {
		return nil, fmt.Errorf("definition: file %s declares no forms", source)
	}

	out := make([]model.FormDefinition, 0, len(doc.Forms))
	for idx, def := range doc.Forms {
		normalised, err := Normalize(def)
		if err != nil {
			return nil, fmt.Errorf("definition: file %s form #%d: %w", source, idx, err)
		}
		out = append(out, normalised)
	}
	return out, nil
}

// Add registers def under its name.
func (s *Store) Add(def model.FormDefinition, source string) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("definition: form name is required (file %s)", source)
	}
	if prev, exists := s.sources[name]; exists {
		return fmt.Errorf("definition: duplicate form %q (files %s and %s)", name, prev, source)
	}
	s.names = append(s.names, name)
	s.definitions[name] = def
	s.sources[name] = source
	return nil
}

// Definition returns the definition registered under name.
func (s *Store) Definition(name string) (model.FormDefinition, bool) {
	if s == nil {
		return model.FormDefinition{}, false
	}
	def, ok := s.definitions[name]
	return def, ok
}

// Definitions returns every definition in load order.
func (s *Store) Definitions() []model.FormDefinition {
	if s == nil {
		return nil
	}
	out := make([]model.FormDefinition, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.definitions[name])
	}
	return out
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.names) == 0
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
