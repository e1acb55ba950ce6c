package validation_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
	"github.com/goliatone/go-multiform/pkg/validation"
)

func rule(kind string, params map[string]string) model.ValidationRule {
	return model.ValidationRule{Kind: kind, Params: params}
}

func profileFields() []model.Field {
	return []model.Field{
		{
			Name:     "email",
			Type:     model.FieldTypeString,
			Required: true,
			Validations: []model.ValidationRule{
				rule(model.ValidationRuleMaxLength, map[string]string{"value": "10", "message": "Too long"}),
				rule(model.ValidationRulePattern, map[string]string{"pattern": "@"}),
			},
		},
		{
			Name: "age",
			Type: model.FieldTypeInteger,
			Validations: []model.ValidationRule{
				rule(model.ValidationRuleMin, map[string]string{"value": "18"}),
				rule(model.ValidationRuleMax, map[string]string{"value": "130", "exclusive": "true"}),
			},
		},
		{Name: "plan", Type: model.FieldTypeString, Enum: []any{"free", "pro"}},
		{
			Name: "address",
			Type: model.FieldTypeObject,
			Nested: []model.Field{
				{Name: "city", Type: model.FieldTypeString, Required: true},
			},
		},
		{
			Name: "lines",
			Type: model.FieldTypeArray,
			Validations: []model.ValidationRule{
				rule(model.ValidationRuleMinLength, map[string]string{"value": "1"}),
			},
			Items: &model.Field{
				Type: model.FieldTypeObject,
				Nested: []model.Field{
					{Name: "sku", Type: model.FieldTypeString, Required: true},
				},
			},
		},
	}
}

func TestCompile_ReportsFieldErrors(t *testing.T) {
	validate, err := validation.Compile(profileFields())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	values := map[string]any{
		"email":   "not-an-email-address",
		"age":     130,
		"plan":    "enterprise",
		"address": map[string]any{"city": ""},
		"lines": []any{
			map[string]any{"sku": "A-1"},
			map[string]any{"sku": ""},
		},
	}

	errs, err := validate(context.Background(), values)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := form.Errors{
		"email":        "Too long",
		"age":          "max 130",
		"plan":         "enterprise is not an allowed option",
		"address.city": "required",
		"lines[1].sku": "required",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_ValidValues(t *testing.T) {
	validate := validation.MustCompile(profileFields())

	errs, err := validate(context.Background(), map[string]any{
		"email":   "a@b.io",
		"age":     float64(42),
		"plan":    "pro",
		"address": map[string]any{"city": "Porto"},
		"lines":   []any{map[string]any{"sku": "A-1"}},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestCompile_EmptyOptionalValues(t *testing.T) {
	validate := validation.MustCompile(profileFields())

	errs, err := validate(context.Background(), map[string]any{
		"email":   "",
		"address": map[string]any{"city": "Porto"},
		"lines":   []any{},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := form.Errors{
		"email": "required",
		"lines": "min items 1",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_MalformedRules(t *testing.T) {
	cases := map[string][]model.Field{
		"non numeric bound": {{
			Name:        "age",
			Type:        model.FieldTypeInteger,
			Validations: []model.ValidationRule{rule(model.ValidationRuleMin, map[string]string{"value": "ten"})},
		}},
		"invalid pattern": {{
			Name:        "code",
			Type:        model.FieldTypeString,
			Validations: []model.ValidationRule{rule(model.ValidationRulePattern, map[string]string{"pattern": "("})},
		}},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := validation.Compile(fields); err == nil {
				t.Fatalf("expected compile error")
			}
		})
	}
}

func TestCompile_HonoursContext(t *testing.T) {
	validate := validation.MustCompile(profileFields())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := validate(ctx, map[string]any{}); err == nil {
		t.Fatalf("expected cancelled context to abort validation")
	}
}
