package definition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-multiform/pkg/model"
)

var errFieldNameMissing = errors.New("field name is required")

// Normalize trims names, defaults missing field types to string and rejects
// unknown types or duplicate field names.
func Normalize(def model.FormDefinition) (model.FormDefinition, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return model.FormDefinition{}, errors.New("form name is required")
	}
	fields, err := normalizeFields(def.Fields, "")
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("form %q: %w", def.Name, err)
	}
	def.Fields = fields
	return def, nil
}

func normalizeFields(fields []model.Field, prefix string) ([]model.Field, error) {
	out := make([]model.Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		normalised, err := normalizeField(field, prefix, true)
		if err != nil {
			return nil, err
		}
		if _, exists := seen[normalised.Name]; exists {
			return nil, fmt.Errorf("duplicate field %q", joinPath(prefix, normalised.Name))
		}
		seen[normalised.Name] = struct{}{}
		out = append(out, normalised)
	}
	return out, nil
}

func normalizeField(field model.Field, prefix string, named bool) (model.Field, error) {
	field.Name = strings.TrimSpace(field.Name)
	if named && field.Name == "" {
		return model.Field{}, errFieldNameMissing
	}
	path := joinPath(prefix, field.Name)

	field.Type = model.FieldType(strings.ToLower(strings.TrimSpace(string(field.Type))))
	switch field.Type {
	case "":
		field.Type = model.FieldTypeString
	case model.FieldTypeString, model.FieldTypeInteger, model.FieldTypeNumber,
		model.FieldTypeBoolean, model.FieldTypeArray, model.FieldTypeObject:
	default:
		return model.Field{}, fmt.Errorf("field %q: unsupported type %q", path, field.Type)
	}

	if len(field.Nested) > 0 {
		nested, err := normalizeFields(field.Nested, path)
		if err != nil {
			return model.Field{}, err
		}
		field.Nested = nested
	}
	if field.Items != nil {
		items, err := normalizeField(*field.Items, path, false)
		if err != nil {
			return model.Field{}, err
		}
		field.Items = &items
	}
	return field, nil
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
