package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
)

type bound struct {
	value     float64
	exclusive bool
	message   string
}

type lengthBound struct {
	value   int
	message string
}

type rules struct {
	name     string
	kind     model.FieldType
	required bool
	min      *bound
	max      *bound
	minLen   *lengthBound
	maxLen   *lengthBound
	pattern  *regexp.Regexp
	patMsg   string
	enum     []any
	nested   []rules
	items    *rules
}

// Compile turns field definitions into a validator. Malformed rule parameters
// (non-numeric bounds, invalid patterns) are reported here rather than at
// validation time.
func Compile(fields []model.Field) (form.ValidateFunc, error) {
	compiled, err := compileFields(fields, "")
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, values map[string]any) (form.Errors, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		errs := make(form.Errors)
		for _, r := range compiled {
			r.check(r.name, values[r.name], errs)
		}
		return errs, nil
	}, nil
}

// MustCompile is like Compile but panics on malformed rules.
func MustCompile(fields []model.Field) form.ValidateFunc {
	fn, err := Compile(fields)
	if err != nil {
		panic(err)
	}
	return fn
}

func compileFields(fields []model.Field, prefix string) ([]rules, error) {
	out := make([]rules, 0, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		r, err := compileField(field, joinPath(prefix, name))
		if err != nil {
			return nil, err
		}
		r.name = name
		out = append(out, r)
	}
	return out, nil
}

func compileField(field model.Field, path string) (rules, error) {
	r := rules{
		kind:     field.Type,
		required: field.Required,
		enum:     field.Enum,
	}
	for _, rule := range field.Validations {
		msg := strings.TrimSpace(rule.Params["message"])
		switch rule.Kind {
		case model.ValidationRuleMin, model.ValidationRuleMax:
			val, err := strconv.ParseFloat(strings.TrimSpace(rule.Params["value"]), 64)
			if err != nil {
				return rules{}, fmt.Errorf("validation: field %s: %s value %q is not numeric", path, rule.Kind, rule.Params["value"])
			}
			b := &bound{value: val, exclusive: rule.Params["exclusive"] == "true", message: msg}
			if rule.Kind == model.ValidationRuleMin {
				r.min = b
			} else {
				r.max = b
			}
		case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
			val, err := strconv.Atoi(strings.TrimSpace(rule.Params["value"]))
			if err != nil || val < 0 {
				return rules{}, fmt.Errorf("validation: field %s: %s value %q is not a length", path, rule.Kind, rule.Params["value"])
			}
			b := &lengthBound{value: val, message: msg}
			if rule.Kind == model.ValidationRuleMinLength {
				r.minLen = b
			} else {
				r.maxLen = b
			}
		case model.ValidationRulePattern:
			expr := rule.Params["pattern"]
			if expr == "" {
				continue
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return rules{}, fmt.Errorf("validation: field %s: pattern: %w", path, err)
			}
			r.pattern = re
			r.patMsg = msg
		}
	}

	if len(field.Nested) > 0 {
		nested, err := compileFields(field.Nested, path)
		if err != nil {
			return rules{}, err
		}
		r.nested = nested
	}
	if field.Items != nil {
		items, err := compileField(*field.Items, path+"[]")
		if err != nil {
			return rules{}, err
		}
		r.items = &items
	}
	return r, nil
}

func (r rules) check(path string, value any, errs form.Errors) {
	if isEmpty(value) {
		if r.required {
			errs[path] = "required"
		}
		return
	}

	var msg string
	switch r.kind {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		msg = r.checkNumber(value)
	case model.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			msg = fmt.Sprintf("expected boolean, got %T", value)
		}
	case model.FieldTypeArray:
		msg = r.checkArray(path, value, errs)
	case model.FieldTypeObject:
		msg = r.checkObject(path, value, errs)
	default:
		msg = r.checkString(value)
	}
	if msg == "" {
		msg = r.checkEnum(value)
	}
	if msg != "" {
		errs[path] = msg
	}
}

func (r rules) checkString(value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("expected string, got %T", value)
	}
	count := utf8.RuneCountInString(s)
	if r.minLen != nil && count < r.minLen.value {
		return orDefault(r.minLen.message, "min length %d", r.minLen.value)
	}
	if r.maxLen != nil && count > r.maxLen.value {
		return orDefault(r.maxLen.message, "max length %d", r.maxLen.value)
	}
	if r.pattern != nil && !r.pattern.MatchString(s) {
		return orDefault(r.patMsg, "does not match required pattern")
	}
	return ""
}

func (r rules) checkNumber(value any) string {
	v, ok := toFloat(value)
	if !ok {
		return fmt.Sprintf("expected number, got %T", value)
	}
	if r.kind == model.FieldTypeInteger && v != math.Trunc(v) {
		return "expected integer"
	}
	if r.min != nil && (v < r.min.value || (r.min.exclusive && v == r.min.value)) {
		return orDefault(r.min.message, "min %v", r.min.value)
	}
	if r.max != nil && (v > r.max.value || (r.max.exclusive && v == r.max.value)) {
		return orDefault(r.max.message, "max %v", r.max.value)
	}
	return ""
}

func (r rules) checkArray(path string, value any, errs form.Errors) string {
	items, ok := value.([]any)
	if !ok {
		return fmt.Sprintf("expected array, got %T", value)
	}
	if r.items != nil {
		for idx, item := range items {
			r.items.check(fmt.Sprintf("%s[%d]", path, idx), item, errs)
		}
	}
	if r.required && len(items) == 0 {
		return "required"
	}
	if r.minLen != nil && len(items) < r.minLen.value {
		return orDefault(r.minLen.message, "min items %d", r.minLen.value)
	}
	if r.maxLen != nil && len(items) > r.maxLen.value {
		return orDefault(r.maxLen.message, "max items %d", r.maxLen.value)
	}
	return ""
}

func (r rules) checkObject(path string, value any, errs form.Errors) string {
	obj, ok := value.(map[string]any)
	if !ok {
		return fmt.Sprintf("expected object, got %T", value)
	}
	for _, child := range r.nested {
		child.check(path+"."+child.name, obj[child.name], errs)
	}
	return ""
}

func (r rules) checkEnum(value any) string {
	if len(r.enum) == 0 {
		return ""
	}
	if r.kind == model.FieldTypeArray {
		items, _ := value.([]any)
		for _, item := range items {
			if !containsValue(r.enum, item) {
				return fmt.Sprintf("%v is not an allowed option", item)
			}
		}
		return ""
	}
	if !containsValue(r.enum, value) {
		return fmt.Sprintf("%v is not an allowed option", value)
	}
	return ""
}

func containsValue(options []any, value any) bool {
	for _, option := range options {
		if reflect.DeepEqual(option, value) {
			return true
		}
		if a, ok := toFloat(option); ok {
			if b, ok := toFloat(value); ok && a == b {
				return true
			}
		}
	}
	return false
}

// isEmpty treats nil and blank strings as missing. Collections are checked by
// their own rules so minimum item counts still apply.
func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		v, err := n.Float64()
		return v, err == nil
	default:
		return 0, false
	}
}

func orDefault(custom, format string, args ...any) string {
	if custom != "" {
		return custom
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
