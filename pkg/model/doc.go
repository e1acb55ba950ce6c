// Package model defines declarative form definitions. A FormDefinition names
// a form, lists its fields with types, defaults and validation rules, and
// states whether the form is repeatable (tracked as a group of items rather
// than a single slot). Definitions come from YAML/JSON files (see
// pkg/definition) or OpenAPI request bodies (see pkg/openapi) and are turned
// into runtime form configuration by pkg/definition.
//
// Validation rules use canonical identifiers (min/max, minLength/maxLength,
// pattern) with string parameters: numeric bounds and length limits encode
// their threshold in Params["value"], patterns keep the expression in
// Params["pattern"], exclusivity is Params["exclusive"] = "true" and
// Params["message"] overrides the default error text.
package model
