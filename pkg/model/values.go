package model

import "math"

// InitialValues builds the seed values for a definition. Fields with a
// Default use it; otherwise strings start empty, booleans false, arrays empty,
// objects recurse into Nested and numbers stay unset (nil) so required checks
// can fire.
func (d FormDefinition) InitialValues() map[string]any {
	return initialValues(d.Fields)
}

func initialValues(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = initialValue(field)
	}
	return out
}

func initialValue(field Field) any {
	if field.Default != nil {
		return coerceNumber(field.Type, normalizeDefault(field.Default))
	}
	switch field.Type {
	case FieldTypeBoolean:
		return false
	case FieldTypeInteger, FieldTypeNumber:
		return nil
	case FieldTypeArray:
		return []any{}
	case FieldTypeObject:
		return initialValues(field.Nested)
	default:
		return ""
	}
}

// normalizeDefault converts decoded defaults into the map[string]any/[]any
// shapes form instances operate on.
func normalizeDefault(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeDefault(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			if key, ok := k.(string); ok {
				out[key] = normalizeDefault(v)
			}
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeDefault(v)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	default:
		return typed
	}
}

// coerceNumber stores numeric defaults the way answers are stored: integer
// fields as int64 and number fields as float64. Values that do not fit the
// field type are returned unchanged.
func coerceNumber(kind FieldType, value any) any {
	switch kind {
	case FieldTypeInteger:
		switch n := value.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		case uint:
			return int64(n)
		case uint64:
			return int64(n)
		case float64:
			if n == math.Trunc(n) {
				return int64(n)
			}
		}
	case FieldTypeNumber:
		switch n := value.(type) {
		case int:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		case uint:
			return float64(n)
		case uint64:
			return float64(n)
		case float32:
			return float64(n)
		}
	}
	return value
}
