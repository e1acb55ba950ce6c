package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-multiform/pkg/model"
	"github.com/goliatone/go-multiform/pkg/openapi"
)

const checkoutDocument = `
openapi: 3.0.3
info:
  title: Checkout
  version: 1.0.0
paths:
  /profile:
    put:
      operationId: updateProfile
      summary: Profile
      x-multiform-section: account
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
                  maxLength: 64
                  x-multiform-order: 1
                nickname:
                  type: string
                  minLength: 2
                  pattern: "^[a-z]+$"
                age:
                  type: integer
                  minimum: 18
                  maximum: 130
                  exclusiveMaximum: true
                newsletter:
                  type: boolean
                  default: true
  /addresses:
    post:
      summary: Address
      x-multiform-repeatable: true
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Address'
    get:
      operationId: listAddresses
      responses:
        "200":
          description: ok
components:
  schemas:
    Address:
      type: object
      properties:
        city:
          type: string
          title: City name
        location:
          type: object
          properties:
            lat:
              type: number
        tags:
          type: array
          minItems: 1
          items:
            type: string
            enum: [home, work]
`

func TestBuilderOperations(t *testing.T) {
	ids, err := openapi.New().Operations(context.Background(), []byte(checkoutDocument))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	want := []string{"post:/addresses", "updateProfile"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderDefinition(t *testing.T) {
	def, err := openapi.New().Definition(context.Background(), []byte(checkoutDocument), "updateProfile")
	if err != nil {
		t.Fatalf("definition: %v", err)
	}

	want := model.FormDefinition{
		Name:  "updateProfile",
		Label: "Profile",
		Fields: []model.Field{
			{
				Name:     "email",
				Type:     model.FieldTypeString,
				Format:   "email",
				Required: true,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "64"}},
				},
			},
			{
				Name: "age",
				Type: model.FieldTypeInteger,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "18"}},
					{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "130", "exclusive": "true"}},
				},
			},
			{Name: "newsletter", Type: model.FieldTypeBoolean, Default: true},
			{
				Name: "nickname",
				Type: model.FieldTypeString,
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "2"}},
					{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "^[a-z]+$"}},
				},
			},
		},
		Metadata: map[string]string{"method": "PUT", "path": "/profile", "section": "account"},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderDefinitionNestedAndRepeatable(t *testing.T) {
	def, err := openapi.New().Definition(context.Background(), []byte(checkoutDocument), "post:/addresses")
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if !def.Repeatable {
		t.Fatalf("expected repeatable definition")
	}
	if def.Label != "Address" {
		t.Fatalf("label = %q, want Address", def.Label)
	}

	want := []model.Field{
		{Name: "city", Type: model.FieldTypeString, Label: "City name"},
		{
			Name:   "location",
			Type:   model.FieldTypeObject,
			Nested: []model.Field{{Name: "lat", Type: model.FieldTypeNumber}},
		},
		{
			Name: "tags",
			Type: model.FieldTypeArray,
			Items: &model.Field{
				Type: model.FieldTypeString,
				Enum: []any{"home", "work"},
			},
			Validations: []model.ValidationRule{
				{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "1"}},
			},
		},
	}
	if diff := cmp.Diff(want, def.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderDefinitions(t *testing.T) {
	defs, err := openapi.New().Definitions(context.Background(), []byte(checkoutDocument))
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	var names []string
	for _, def := range defs {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"post:/addresses", "updateProfile"}, names); diff != "" {
		t.Fatalf("definition names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderErrors(t *testing.T) {
	ctx := context.Background()
	builder := openapi.New()

	if _, err := builder.Definition(ctx, nil, "x"); !errors.Is(err, openapi.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := builder.Definition(ctx, []byte(checkoutDocument), "missing"); !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := builder.Definition(ctx, []byte(checkoutDocument), "listAddresses"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := builder.Definition(ctx, []byte("openapi: [broken"), "x"); err == nil {
		t.Fatalf("expected load error for malformed document")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := builder.Operations(cancelled, []byte(checkoutDocument)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuilderMediaTypes(t *testing.T) {
	ids, err := openapi.New(openapi.WithMediaTypes("multipart/form-data")).
		Operations(context.Background(), []byte(checkoutDocument))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no operations for multipart-only builder, got %v", ids)
	}
}
