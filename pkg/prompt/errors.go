package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNilInstance is returned when Fill is called without an instance.
	ErrNilInstance = errors.New("prompt: form instance is required")
)

// Answer parse failures, shown to the user as they are.
var (
	errNotInteger = errors.New("not an integer")
	errNotNumber  = errors.New("not a number")
)
