package multiform

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-multiform/pkg/coordinator"
	"github.com/goliatone/go-multiform/pkg/definition"
	"github.com/goliatone/go-multiform/pkg/model"
	"github.com/goliatone/go-multiform/pkg/openapi"
	"github.com/goliatone/go-multiform/pkg/orchestrator"
)

//go:embed samples/*.yaml
var embeddedSamples embed.FS

// Coordinator aliases coordinator.Coordinator for callers that only import the
// root package.
type Coordinator = coordinator.Coordinator

// Result aliases coordinator.Result.
type Result = coordinator.Result

// Flags aliases coordinator.Flags.
type Flags = coordinator.Flags

// NewCoordinator constructs an empty coordinator.
func NewCoordinator(options ...coordinator.Option) *Coordinator {
	return coordinator.New(options...)
}

// NewOrchestrator constructs an interactive session runner.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// SamplesFS exposes the bundled example form definitions.
func SamplesFS() fs.FS {
	sub, err := fs.Sub(embeddedSamples, "samples")
	if err != nil {
		return embeddedSamples
	}
	return sub
}

// DefinitionsFromFS loads every definition file in fsys, in load order.
func DefinitionsFromFS(fsys fs.FS) ([]model.FormDefinition, error) {
	store, err := definition.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return store.Definitions(), nil
}

// DefinitionsFromOpenAPI builds definitions from the request bodies of an
// OpenAPI document. Without operation ids every operation with a request body
// is used.
func DefinitionsFromOpenAPI(ctx context.Context, raw []byte, operationIDs ...string) ([]model.FormDefinition, error) {
	builder := openapi.New()
	if len(operationIDs) == 0 {
		return builder.Definitions(ctx, raw)
	}
	defs := make([]model.FormDefinition, 0, len(operationIDs))
	for _, id := range operationIDs {
		def, err := builder.Definition(ctx, raw, id)
		if err != nil {
			return nil, fmt.Errorf("multiform: operation %q: %w", id, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
