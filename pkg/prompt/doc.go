// Package prompt fills form instances interactively. A PromptDriver asks one
// question per field; answers are written into the instance and re-asked
// while the instance reports a validation error for that field.
package prompt
