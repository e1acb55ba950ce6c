package definition

import (
	"fmt"

	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
	"github.com/goliatone/go-multiform/pkg/validation"
)

// Config converts def into a form configuration: initial values come from the
// field defaults and the validator combines the compiled field rules with any
// extra validators supplied.
func Config(def model.FormDefinition, extra ...form.ValidateFunc) (form.Config, error) {
	rules, err := validation.Compile(def.Fields)
	if err != nil {
		return form.Config{}, fmt.Errorf("definition: form %q: %w", def.Name, err)
	}
	validators := append([]form.ValidateFunc{rules}, extra...)
	return form.Config{
		InitialValues: def.InitialValues(),
		Validate:      form.ComposeValidators(validators...),
	}, nil
}
