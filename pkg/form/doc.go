// Package form implements the single-form state engine the coordinator
// composes. An Instance tracks values, initial values, per-path validation
// errors and touched flags, exposes derived validity and dirtiness, and
// notifies subscribers after every state change.
//
// Field paths follow the lodash convention used by most form libraries:
// "owner.email", "tags[0]", "lines[2].sku". Numeric dotted segments
// ("lines.2.sku") are accepted on input and normalised to the bracket form.
//
// Validation is pluggable through ValidateFunc. A validator reports field
// problems through the returned Errors map; a non-nil error means the
// validator itself failed and is propagated to the caller unchanged.
package form
