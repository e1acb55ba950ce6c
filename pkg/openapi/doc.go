// Package openapi builds form definitions from OpenAPI 3 request bodies using
// kin-openapi. Each operation with a request body becomes one
// model.FormDefinition whose fields mirror the body schema.
package openapi
