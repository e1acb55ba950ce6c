package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single validation constraint applied to a field.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Field models an individual input inside a form definition.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Type        FieldType         `json:"type" yaml:"type"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty" yaml:"enum,omitempty"`
	Nested      []Field           `json:"nested,omitempty" yaml:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty" yaml:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FormDefinition describes one logical form. Repeatable definitions are bound
// as groups, one instance per item.
type FormDefinition struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Repeatable  bool              `json:"repeatable,omitempty" yaml:"repeatable,omitempty"`
	Fields      []Field           `json:"fields" yaml:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Rule looks up the first validation rule of the given kind.
func (f Field) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// Clone returns a deep copy of the definition. Defaults and enum values are
// copied by reference.
func (d FormDefinition) Clone() FormDefinition {
	out := d
	out.Fields = cloneFields(d.Fields)
	out.Metadata = cloneStringMap(d.Metadata)
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = cloneField(field)
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	out.Nested = cloneFields(field.Nested)
	if field.Items != nil {
		items := cloneField(*field.Items)
		out.Items = &items
	}
	if field.Enum != nil {
		out.Enum = append([]any(nil), field.Enum...)
	}
	if field.Validations != nil {
		out.Validations = make([]ValidationRule, len(field.Validations))
		for i, rule := range field.Validations {
			out.Validations[i] = ValidationRule{Kind: rule.Kind, Params: cloneStringMap(rule.Params)}
		}
	}
	out.Metadata = cloneStringMap(field.Metadata)
	return out
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
