package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-multiform/pkg/model"
)

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"billing_address": "Billing Address",
		"postCode2":       "Post Code 2",
		"first-name":      "First Name",
		"email":           "Email",
		"":                "",
	}
	for input, want := range cases {
		if got := model.Humanize(input); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormDefinition_InitialValues(t *testing.T) {
	def := model.FormDefinition{
		Name: "profile",
		Fields: []model.Field{
			{Name: "email", Type: model.FieldTypeString},
			{Name: "age", Type: model.FieldTypeInteger},
			{Name: "newsletter", Type: model.FieldTypeBoolean, Default: true},
			{Name: "tags", Type: model.FieldTypeArray, Default: []string{"a"}},
			{
				Name: "address",
				Type: model.FieldTypeObject,
				Nested: []model.Field{
					{Name: "city", Type: model.FieldTypeString, Default: "Lisbon"},
				},
			},
		},
	}

	want := map[string]any{
		"email":      "",
		"age":        nil,
		"newsletter": true,
		"tags":       []any{"a"},
		"address":    map[string]any{"city": "Lisbon"},
	}
	if diff := cmp.Diff(want, def.InitialValues()); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyDecorators(t *testing.T) {
	def := &model.FormDefinition{Name: "profile"}
	labeler := model.DecoratorFunc(func(d *model.FormDefinition) error {
		d.Label = "Your profile"
		return nil
	})
	boom := errors.New("stop")
	failing := model.DecoratorFunc(func(*model.FormDefinition) error { return boom })

	if err := model.Apply(def, labeler, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if def.DisplayLabel() != "Your profile" {
		t.Fatalf("unexpected label %q", def.DisplayLabel())
	}
	if err := model.Apply(def, failing, labeler); !errors.Is(err, boom) {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestFormDefinition_NumericDefaults(t *testing.T) {
	def := model.FormDefinition{
		Name: "order",
		Fields: []model.Field{
			{Name: "quantity", Type: model.FieldTypeInteger, Default: 3},
			{Name: "fromSchema", Type: model.FieldTypeInteger, Default: float64(7)},
			{Name: "ratio", Type: model.FieldTypeNumber, Default: 1},
			{Name: "half", Type: model.FieldTypeInteger, Default: 0.5},
		},
	}
	want := map[string]any{
		"quantity":   int64(3),
		"fromSchema": int64(7),
		"ratio":      float64(1),
		"half":       0.5,
	}
	if diff := cmp.Diff(want, def.InitialValues()); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
}

func TestFormDefinition_Clone(t *testing.T) {
	original := model.FormDefinition{
		Name:     "order",
		Metadata: map[string]string{"section": "billing"},
		Fields: []model.Field{
			{
				Name:        "address",
				Type:        model.FieldTypeObject,
				Nested:      []model.Field{{Name: "city", Label: "City"}},
				Validations: []model.ValidationRule{{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "1"}}},
			},
			{Name: "tags", Type: model.FieldTypeArray, Items: &model.Field{Type: model.FieldTypeString}},
		},
	}
	snapshot := original.Clone()

	clone := original.Clone()
	clone.Metadata["section"] = "shipping"
	clone.Fields[0].Label = "Where"
	clone.Fields[0].Nested[0].Label = "Town"
	clone.Fields[0].Validations[0].Params["value"] = "9"
	clone.Fields[1].Items.Description = "One tag"

	if diff := cmp.Diff(snapshot, original); diff != "" {
		t.Fatalf("clone changes leaked into the original (-want +got):\n%s", diff)
	}
}
