package openapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-multiform/pkg/model"
)

const (
	extensionNamespace     = "x-multiform"
	labelExtensionKey      = extensionNamespace + "-label"
	repeatableExtensionKey = extensionNamespace + "-repeatable"
	orderExtensionKey      = extensionNamespace + "-order"
)

// convertProperties maps the object properties of schema to fields. Fields
// carrying x-multiform-order come first by that value, the rest follow by name.
// seen holds the schemas on the current descent so recursive references stop
// at the first repeat.
func convertProperties(schema *openapi3.Schema, seen map[*openapi3.Schema]bool) []model.Field {
	if schema == nil || len(schema.Properties) == 0 || seen[schema] {
		return nil
	}
	if seen == nil {
		seen = make(map[*openapi3.Schema]bool)
	}
	seen[schema] = true
	defer delete(seen, schema)

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, iok := fieldOrder(schema.Properties[names[i]])
		oj, jok := fieldOrder(schema.Properties[names[j]])
		switch {
		case iok && jok && oi != oj:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})

	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		field := convertSchema(name, schema.Properties[name], seen)
		_, field.Required = required[name]
		fields = append(fields, field)
	}
	return fields
}

func convertSchema(name string, ref *openapi3.SchemaRef, seen map[*openapi3.Schema]bool) model.Field {
	field := model.Field{Name: name, Type: model.FieldTypeString}
	if ref == nil || ref.Value == nil {
		return field
	}
	src := ref.Value

	field.Type = fieldType(src)
	field.Format = src.Format
	field.Label = firstNonEmpty(stringExtension(src.Extensions, labelExtensionKey), src.Title)
	field.Description = src.Description
	field.Default = src.Default
	if len(src.Enum) > 0 {
		field.Enum = append([]any(nil), src.Enum...)
	}
	field.Metadata = metadataExtensions(src.Extensions)

	switch field.Type {
	case model.FieldTypeObject:
		field.Nested = convertProperties(src, seen)
	case model.FieldTypeArray:
		if src.Items != nil && (src.Items.Value == nil || !seen[src.Items.Value]) {
			items := convertSchema("", src.Items, seen)
			field.Items = &items
		}
	}
	field.Validations = validationRules(field.Type, src)
	return field
}

func fieldType(src *openapi3.Schema) model.FieldType {
	switch {
	case src.Type.Is(openapi3.TypeInteger):
		return model.FieldTypeInteger
	case src.Type.Is(openapi3.TypeNumber):
		return model.FieldTypeNumber
	case src.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeBoolean
	case src.Type.Is(openapi3.TypeArray):
		return model.FieldTypeArray
	case src.Type.Is(openapi3.TypeObject):
		return model.FieldTypeObject
	case src.Type.Is(openapi3.TypeString):
		return model.FieldTypeString
	}
	if len(src.Properties) > 0 {
		return model.FieldTypeObject
	}
	if src.Items != nil {
		return model.FieldTypeArray
	}
	return model.FieldTypeString
}

func validationRules(kind model.FieldType, src *openapi3.Schema) []model.ValidationRule {
	var rules []model.ValidationRule
	if src.Min != nil {
		rules = append(rules, boundRule(model.ValidationRuleMin, *src.Min, src.ExclusiveMin))
	}
	if src.Max != nil {
		rules = append(rules, boundRule(model.ValidationRuleMax, *src.Max, src.ExclusiveMax))
	}

	minLen, maxLen := src.MinLength, src.MaxLength
	if kind == model.FieldTypeArray {
		minLen, maxLen = src.MinItems, src.MaxItems
	}
	if minLen > 0 {
		rules = append(rules, lengthRule(model.ValidationRuleMinLength, minLen))
	}
	if maxLen != nil {
		rules = append(rules, lengthRule(model.ValidationRuleMaxLength, *maxLen))
	}
	if src.Pattern != "" {
		rules = append(rules, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": src.Pattern},
		})
	}
	return rules
}

func boundRule(kind string, value float64, exclusive bool) model.ValidationRule {
	params := map[string]string{"value": strconv.FormatFloat(value, 'f', -1, 64)}
	if exclusive {
		params["exclusive"] = "true"
	}
	return model.ValidationRule{Kind: kind, Params: params}
}

func lengthRule(kind string, value uint64) model.ValidationRule {
	return model.ValidationRule{
		Kind:   kind,
		Params: map[string]string{"value": strconv.FormatUint(value, 10)},
	}
}

func fieldOrder(ref *openapi3.SchemaRef) (int, bool) {
	if ref == nil || ref.Value == nil {
		return 0, false
	}
	raw, ok := ref.Value.Extensions[orderExtensionKey]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func stringExtension(ext map[string]any, key string) string {
	if value, ok := ext[key].(string); ok {
		return value
	}
	return ""
}

func boolExtension(ext map[string]any, key string) bool {
	switch v := ext[key].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		return parsed
	default:
		return false
	}
}

// metadataExtensions collects scalar x-multiform-* extensions keyed without
// the namespace prefix. Label, order and repeatable are consumed elsewhere.
func metadataExtensions(ext map[string]any) map[string]string {
	var out map[string]string
	for key, value := range ext {
		if !strings.HasPrefix(key, extensionNamespace+"-") {
			continue
		}
		switch key {
		case labelExtensionKey, repeatableExtensionKey, orderExtensionKey:
			continue
		}
		var str string
		switch v := value.(type) {
		case string:
			str = v
		case bool, float64, int:
			str = fmt.Sprint(v)
		default:
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[strings.TrimPrefix(key, extensionNamespace+"-")] = str
	}
	return out
}
