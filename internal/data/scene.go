package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/scenegraph/internal/component"
	"github.com/l1jgo/scenegraph/internal/world"
)

// SceneEntity is one entry of a scene file. Parent names another entry, or
// is empty for a root.
type SceneEntity struct {
	Name     string  `yaml:"name"`
	Parent   string  `yaml:"parent"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"` // degrees
}

type sceneFile struct {
	Entities []SceneEntity `yaml:"entities"`
}

// SceneFile holds a parsed scene, entries in file order.
type SceneFile struct {
	Entities []SceneEntity
}

// Count returns the number of entities in the file.
func (f *SceneFile) Count() int {
	return len(f.Entities)
}

// LoadScene loads a scene description from a YAML file.
func LoadScene(path string) (*SceneFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene parses and validates scene YAML. Names must be unique and
// non-empty, and every parent must name an entry of the same file.
func ParseScene(raw []byte) (*SceneFile, error) {
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Entities))
	for i, e := range f.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("parse scene: entity #%d has no name", i)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("parse scene: duplicate entity %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	for _, e := range f.Entities {
		if e.Parent == "" {
			continue
		}
		if _, ok := seen[e.Parent]; !ok {
			return nil, fmt.Errorf("parse scene: %q has unknown parent %q", e.Name, e.Parent)
		}
	}
	return &SceneFile{Entities: f.Entities}, nil
}

// Populate spawns every entity of the file into s, then links parents.
// Links go in after all spawns so file order does not matter.
func (f *SceneFile) Populate(s *world.Scene) error {
	for _, e := range f.Entities {
		id, err := s.Spawn(e.Name)
		if err != nil {
			return fmt.Errorf("populate: %w", err)
		}
		if err := s.SetLocal(id, component.Transform{X: e.X, Y: e.Y, Rotation: e.Rotation}); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	for _, e := range f.Entities {
		if e.Parent == "" {
			continue
		}
		child, _ := s.Lookup(e.Name)
		parent, _ := s.Lookup(e.Parent)
		if err := s.SetParent(child, parent); err != nil {
			return fmt.Errorf("populate %q: %w", e.Name, err)
		}
	}
	return nil
}
