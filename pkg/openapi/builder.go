package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-multiform/pkg/model"
)

var (
	// ErrEmptyDocument is returned when no document payload is supplied.
	ErrEmptyDocument = errors.New("openapi: document payload is empty")
	// ErrOperationNotFound is returned when an operation id is unknown.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when an operation does not declare a request
	// body schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body")
)

// Options configures a Builder.
type Options struct {
	// ResolveReferences allows external $ref resolution and validates the
	// document after loading.
	ResolveReferences bool
	// MediaTypes lists request body media types in preference order.
	MediaTypes []string
}

// Option mutates Options.
type Option func(*Options)

// WithReferenceResolution toggles external reference resolution.
func WithReferenceResolution(enabled bool) Option {
	return func(o *Options) {
		o.ResolveReferences = enabled
	}
}

// WithMediaTypes overrides the request body media type preference.
func WithMediaTypes(types ...string) Option {
	return func(o *Options) {
		if len(types) > 0 {
			o.MediaTypes = append([]string(nil), types...)
		}
	}
}

// Builder converts OpenAPI operations into form definitions.
type Builder struct {
	options Options
}

// New constructs a Builder.
func New(options ...Option) *Builder {
	opts := Options{
		MediaTypes: []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return &Builder{options: opts}
}

type operation struct {
	id     string
	method string
	path   string
	op     *openapi3.Operation
}

// Operations lists the ids of every operation that declares a request body,
// sorted. Operations without an operationId are keyed as "method:path".
func (b *Builder) Operations(ctx context.Context, raw []byte) ([]string, error) {
	ops, err := b.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ops))
	for id, op := range ops {
		if b.requestSchema(op.op) != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Definition builds the form definition for a single operation.
func (b *Builder) Definition(ctx context.Context, raw []byte, operationID string) (model.FormDefinition, error) {
	ops, err := b.load(ctx, raw)
	if err != nil {
		return model.FormDefinition{}, err
	}
	op, ok := ops[operationID]
	if !ok {
		return model.FormDefinition{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	return b.definition(op)
}

// Definitions builds a form definition for every operation that declares a
// request body, ordered by operation id.
func (b *Builder) Definitions(ctx context.Context, raw []byte) ([]model.FormDefinition, error) {
	ops, err := b.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	defs := make([]model.FormDefinition, 0, len(ids))
	for _, id := range ids {
		def, err := b.definition(ops[id])
		if errors.Is(err, ErrNoRequestBody) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (b *Builder) load(ctx context.Context, raw []byte) (map[string]operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: b.options.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if b.options.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	ops := make(map[string]operation)
	if doc.Paths == nil {
		return ops, nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			ops[id] = operation{id: id, method: method, path: path, op: op}
		}
	}
	return ops, nil
}

func (b *Builder) requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range b.options.MediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func (b *Builder) definition(op operation) (model.FormDefinition, error) {
	schema := b.requestSchema(op.op)
	if schema == nil {
		return model.FormDefinition{}, fmt.Errorf("%w: %q", ErrNoRequestBody, op.id)
	}

	def := model.FormDefinition{
		Name:        op.id,
		Label:       firstNonEmpty(stringExtension(op.op.Extensions, labelExtensionKey), op.op.Summary, schema.Title),
		Description: firstNonEmpty(op.op.Description, schema.Description),
		Repeatable:  boolExtension(op.op.Extensions, repeatableExtensionKey),
		Fields:      convertProperties(schema, nil),
		Metadata: map[string]string{
			"method": strings.ToUpper(op.method),
			"path":   op.path,
		},
	}
	for key, value := range metadataExtensions(op.op.Extensions) {
		def.Metadata[key] = value
	}
	return def, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
