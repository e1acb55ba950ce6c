package form

import (
	"context"
	"sort"
)

// Errors maps canonical field paths to a single validation message.
type Errors map[string]string

// Paths returns the error paths in lexical order.
func (e Errors) Paths() []string {
	if len(e) == 0 {
		return nil
	}
	paths := make([]string, 0, len(e))
	for path := range e {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for path, msg := range e {
		out[path] = msg
	}
	return out
}

// ValidateFunc inspects a snapshot of the form values. Field problems are
// reported through Errors; a non-nil error aborts the operation that triggered
// validation. Implementations must not call back into the Instance.
type ValidateFunc func(ctx context.Context, values map[string]any) (Errors, error)

// SubmitFunc receives the values of a form that passed validation.
type SubmitFunc func(ctx context.Context, values map[string]any) (any, error)

// Config describes how an Instance is seeded and validated.
type Config struct {
	// InitialValues seeds the form and is the baseline for Dirty. The map is
	// deep-copied.
	InitialValues map[string]any

	// Validate runs on mount (when ValidateOnMount is set), on every value
	// change unless SkipValidateOnChange is set, on reset and on submit.
	Validate ValidateFunc

	// ValidateOnMount validates once during New and again after ResetForm.
	ValidateOnMount bool

	// SkipValidateOnChange stops value mutators from revalidating.
	SkipValidateOnChange bool

	// OnSubmit runs from SubmitForm when validation reports no errors.
	OnSubmit SubmitFunc
}

// ComposeValidators runs every validator in order and merges their errors.
// The first message reported for a path wins. The first validator failure is
// returned immediately.
func ComposeValidators(validators ...ValidateFunc) ValidateFunc {
	active := make([]ValidateFunc, 0, len(validators))
	for _, fn := range validators {
		if fn != nil {
			active = append(active, fn)
		}
	}
	if len(active) == 0 {
		return nil
	}
	if len(active) == 1 {
		return active[0]
	}
	return func(ctx context.Context, values map[string]any) (Errors, error) {
		merged := make(Errors)
		for _, fn := range active {
			errs, err := fn(ctx, values)
			if err != nil {
				return nil, err
			}
			for path, msg := range errs {
				if _, exists := merged[path]; !exists {
					merged[path] = msg
				}
			}
		}
		return merged, nil
	}
}
