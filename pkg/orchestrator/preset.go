package orchestrator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-multiform/pkg/model"
)

// Preset applies declarative overrides to form definitions. The document is
// YAML or JSON keyed by form name:
//
//	forms:
//	  profile:
//	    label: Your profile
//	    fields:
//	      email: {label: E-mail, required: true}
//	      address.city: {default: Lisbon}
//	      tags.items: {description: One tag per entry}
//
// Field keys are dotted paths; "items" descends into array item definitions.
type Preset struct {
	document presetDocument
}

type presetDocument struct {
	Forms map[string]formPatch `yaml:"forms"`
}

type formPatch struct {
	Label       string                `yaml:"label"`
	Description string                `yaml:"description"`
	Repeatable  *bool                 `yaml:"repeatable"`
	Metadata    map[string]string     `yaml:"metadata"`
	Fields      map[string]fieldPatch `yaml:"fields"`
}

type fieldPatch struct {
	Label       string            `yaml:"label"`
	Description string            `yaml:"description"`
	Default     any               `yaml:"default"`
	Required    *bool             `yaml:"required"`
	Metadata    map[string]string `yaml:"metadata"`
}

var _ model.Decorator = (*Preset)(nil)

// NewPreset parses a preset document.
func NewPreset(data []byte) (*Preset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset: parse document: %w", err)
	}
	return &Preset{document: document}, nil
}

// NewPresetFromFS loads a preset document from fsys.
func NewPresetFromFS(fsys fs.FS, path string) (*Preset, error) {
	if fsys == nil {
		return nil, errors.New("preset: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}
	return NewPreset(data)
}

// Decorate applies the patch registered for def.Name, if any. Unknown field
// paths are reported as errors.
func (p *Preset) Decorate(def *model.FormDefinition) error {
	if def == nil {
		return errors.New("preset: form definition is nil")
	}
	patch, ok := p.document.Forms[def.Name]
	if !ok {
		return nil
	}

	if patch.Label != "" {
		def.Label = patch.Label
	}
	if patch.Description != "" {
		def.Description = patch.Description
	}
	if patch.Repeatable != nil {
		def.Repeatable = *patch.Repeatable
	}
	def.Metadata = mergeStringMap(def.Metadata, patch.Metadata)

	for path, fp := range patch.Fields {
		field := findFieldByPath(def.Fields, path)
		if field == nil {
			return fmt.Errorf("preset: form %q: field %q not found", def.Name, path)
		}
		applyFieldPatch(field, fp)
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Default != nil {
		field.Default = patch.Default
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
}

func findFieldByPath(fields []model.Field, path string) *model.Field {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return walkFieldsByPath(fields, strings.Split(path, "."))
}

func walkFieldsByPath(fields []model.Field, segments []string) *model.Field {
	if len(segments) == 0 {
		return nil
	}
	head := segments[0]
	for idx := range fields {
		field := &fields[idx]
		if field.Name != head {
			continue
		}
		if len(segments) == 1 {
			return field
		}
		if segments[1] == "items" {
			return descendArray(field, segments[2:])
		}
		return walkFieldsByPath(field.Nested, segments[1:])
	}
	return nil
}

func descendArray(field *model.Field, segments []string) *model.Field {
	if field == nil || field.Items == nil {
		return nil
	}
	if len(segments) == 0 {
		return field.Items
	}
	if segments[0] == "items" {
		return descendArray(field.Items, segments[1:])
	}
	return walkFieldsByPath(field.Items.Nested, segments)
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
