package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyPath is returned when a mutator receives a blank field path.
var ErrEmptyPath = errors.New("form: field path is required")

// SplitPath breaks a field path into segments. Both "a.b[0].c" and "a.b.0.c"
// yield ["a" "b" "0" "c"].
func SplitPath(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)

	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// JoinPath renders segments in canonical form, using brackets for numeric
// segments.
func JoinPath(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		if isIndex(segment) {
			b.WriteString("[")
			b.WriteString(segment)
			b.WriteString("]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(segment)
	}
	return b.String()
}

// NormalizePath returns the canonical spelling of path.
func NormalizePath(path string) string {
	return JoinPath(SplitPath(path))
}

// GetPath resolves path inside root.
func GetPath(root map[string]any, path string) (any, bool) {
	segments := SplitPath(path)
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	var current any = root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetPath writes value at path, creating intermediate maps and slices as
// needed. Numeric segments below a missing node create slices.
func SetPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("form: root map is nil")
	}
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ErrEmptyPath
	}
	_, err := setIn(root, segments, value)
	return err
}

func setIn(node any, segments []string, value any) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment, rest := segments[0], segments[1:]

	switch typed := node.(type) {
	case map[string]any:
		child, err := setIn(typed[segment], rest, value)
		if err != nil {
			return nil, err
		}
		typed[segment] = child
		return typed, nil

	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("form: expected numeric segment, got %q", segment)
		}
		if idx >= len(typed) {
			typed = append(typed, make([]any, idx+1-len(typed))...)
		}
		child, err := setIn(typed[idx], rest, value)
		if err != nil {
			return nil, err
		}
		typed[idx] = child
		return typed, nil

	case nil:
		if isIndex(segment) {
			return setIn([]any{}, segments, value)
		}
		return setIn(make(map[string]any), segments, value)

	default:
		return nil, fmt.Errorf("form: unexpected container %T for segment %q", node, segment)
	}
}

// Flatten converts a nested value into a map of leaf paths. Maps contribute
// dotted segments and slices contribute bracketed indices:
//
//	{"a": {"b": 1}, "v": [[1]]} => {"a.b": 1, "v[0][0]": 1}
//
// Non-container inputs flatten to an empty map.
func Flatten(value any) map[string]any {
	out := make(map[string]any)
	switch value.(type) {
	case map[string]any, []any:
	default:
		return out
	}
	walk(value, "", out)
	return out
}

func walk(value any, prefix string, out map[string]any) {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			walk(child, next, out)
		}
	case []any:
		for idx, child := range typed {
			walk(child, prefix+"["+strconv.Itoa(idx)+"]", out)
		}
	default:
		out[prefix] = typed
	}
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
