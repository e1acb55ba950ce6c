package definition_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-multiform/pkg/definition"
	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
)

const profileYAML = `
forms:
  - name: profile
    label: Profile
    fields:
      - name: email
        required: true
        validations:
          - kind: maxLength
            params: {value: "5", message: Too long}
      - name: age
        type: Integer
  - name: addresses
    repeatable: true
    fields:
      - name: city
        type: string
        default: Lisbon
`

const billingJSON = `{"forms": [{"name": "billing", "fields": [{"name": "vat", "type": "string"}]}]}`

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/b_profile.yaml": {Data: []byte(profileYAML)},
		"forms/a_billing.json": {Data: []byte(billingJSON)},
		"forms/readme.md":      {Data: []byte("ignored")},
	}

	store, err := definition.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var names []string
	for _, def := range store.Definitions() {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"billing", "profile", "addresses"}, names); diff != "" {
		t.Fatalf("definition order mismatch (-want +got):\n%s", diff)
	}

	profile, ok := store.Definition("profile")
	if !ok {
		t.Fatalf("profile definition missing")
	}
	if profile.Fields[0].Type != model.FieldTypeString {
		t.Fatalf("expected default string type, got %q", profile.Fields[0].Type)
	}
	if profile.Fields[1].Type != model.FieldTypeInteger {
		t.Fatalf("expected normalised integer type, got %q", profile.Fields[1].Type)
	}

	addresses, _ := store.Definition("addresses")
	if !addresses.Repeatable {
		t.Fatalf("expected addresses to be repeatable")
	}
}

func TestLoadFS_DuplicateForms(t *testing.T) {
	fsys := fstest.MapFS{
		"one.yaml": {Data: []byte(profileYAML)},
		"two.yaml": {Data: []byte(profileYAML)},
	}
	_, err := definition.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), "duplicate form") {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "   ",
		"no forms":      "forms: []",
		"missing name":  "forms: [{fields: []}]",
		"bad type":      "forms: [{name: x, fields: [{name: a, type: date}]}]",
		"dup field":     "forms: [{name: x, fields: [{name: a}, {name: a}]}]",
		"unnamed field": "forms: [{name: x, fields: [{type: string}]}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := definition.Parse([]byte(doc), name); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func TestConfig(t *testing.T) {
	defs, err := definition.Parse([]byte(profileYAML), "profile.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	extra := func(_ context.Context, values map[string]any) (form.Errors, error) {
		if values["email"] == "admin" {
			return form.Errors{"email": "reserved"}, nil
		}
		return nil, nil
	}

	cfg, err := definition.Config(defs[0], extra)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"email": "", "age": nil}, cfg.InitialValues); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}

	ctx := context.Background()
	errs, err := cfg.Validate(ctx, map[string]any{"email": "too-long"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if errs["email"] != "Too long" {
		t.Fatalf("expected compiled rule error, got %v", errs)
	}

	errs, err = cfg.Validate(ctx, map[string]any{"email": "admin"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if errs["email"] != "reserved" {
		t.Fatalf("expected extra validator error, got %v", errs)
	}
}
