// Package validation compiles the declarative rules of a form definition into
// a form.ValidateFunc. Rules are evaluated per field path; nested objects and
// arrays of objects are walked so errors are reported at paths such as
// "address.city" or "lines[1].sku".
package validation
