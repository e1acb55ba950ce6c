package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
)

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger sets the logger used for prompt events.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler walks a form definition and asks for every field.
type Filler struct {
	driver PromptDriver
	logger *zap.Logger
}

// New constructs a Filler. Without WithPromptDriver it prompts through survey.
func New(options ...Option) *Filler {
	f := &Filler{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil, nil)
	}
	return f
}

// Driver exposes the prompt driver so callers can ask follow-up questions
// through the same terminal.
func (f *Filler) Driver() PromptDriver {
	return f.driver
}

// Fill prompts for every field of def and writes the answers into inst. An
// answer is asked again while inst reports a validation error at its path.
func (f *Filler) Fill(ctx context.Context, inst *form.Instance, def model.FormDefinition) error {
	if inst == nil {
		return ErrNilInstance
	}
	if label := def.DisplayLabel(); label != "" {
		if err := f.driver.Info(ctx, label); err != nil {
			return err
		}
	}
	for _, field := range def.Fields {
		if err := f.promptField(ctx, inst, field, field.Name); err != nil {
			return err
		}
	}
	f.logger.Debug("form filled", zap.String("form", def.Name), zap.Bool("valid", inst.IsValid()))
	return nil
}

func (f *Filler) promptField(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	switch field.Type {
	case model.FieldTypeBoolean:
		return f.promptBoolean(ctx, inst, field, path)
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return f.promptNumber(ctx, inst, field, path)
	case model.FieldTypeArray:
		return f.promptArray(ctx, inst, field, path)
	case model.FieldTypeObject:
		for _, child := range field.Nested {
			if err := f.promptField(ctx, inst, child, path+"."+child.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(field.Enum) > 0 {
			return f.promptEnum(ctx, inst, field, path)
		}
		return f.promptString(ctx, inst, field, path)
	}
}

// accept writes value and reports whether the instance considers path valid.
// Rejections are shown through the driver.
func (f *Filler) accept(ctx context.Context, inst *form.Instance, path string, value any) (bool, error) {
	if err := inst.SetFieldValue(ctx, path, value); err != nil {
		return false, err
	}
	errs, err := inst.ValidateForm(ctx)
	if err != nil {
		return false, err
	}
	if msg := errs[path]; msg != "" {
		f.logger.Debug("answer rejected", zap.String("path", path), zap.String("reason", msg))
		if err := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", path, msg)); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// instanceCheck builds an AnswerCheck that applies the parsed answer to inst and
// reports the error recorded at path, so drivers can re-ask before returning.
func instanceCheck(ctx context.Context, inst *form.Instance, path string, parse func(string) (any, error)) AnswerCheck {
	return func(answer string) error {
		value, err := parse(answer)
		if err != nil {
			return err
		}
		if err := inst.SetFieldValue(ctx, path, value); err != nil {
			return err
		}
		errs, err := inst.ValidateForm(ctx)
		if err != nil {
			return err
		}
		if msg := errs[path]; msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func parseText(answer string) (any, error) {
	return answer, nil
}

// numberParser returns the parser for integer or number answers. Blank
// answers clear the field.
func numberParser(fieldType model.FieldType) func(string) (any, error) {
	return func(answer string) (any, error) {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil, nil
		}
		if fieldType == model.FieldTypeInteger {
			i, err := strconv.ParseInt(answer, 10, 64)
			if err != nil {
				return nil, errNotInteger
			}
			return i, nil
		}
		n, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return nil, errNotNumber
		}
		return n, nil
	}
}

func (f *Filler) promptString(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	label := field.DisplayLabel()
	defaultVal := currentString(inst, path, field.Default)
	secret := field.Format == "password" || strings.EqualFold(field.Metadata["secret"], "true")
	answerCheck := instanceCheck(ctx, inst, path, parseText)

	for {
		var (
			response string
			err      error
		)
		switch {
		case secret:
			response, err = f.driver.Password(ctx, InputConfig{Message: label, Default: defaultVal, Help: field.Description, Check: answerCheck})
		case field.Format == "textarea":
			response, err = f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal, Help: field.Description, Check: answerCheck})
		default:
			response, err = f.driver.Input(ctx, InputConfig{Message: label, Default: defaultVal, Help: field.Description, Check: answerCheck})
		}
		if err != nil {
			return err
		}
		ok, err := f.accept(ctx, inst, path, response)
		if err != nil || ok {
			return err
		}
	}
}

func (f *Filler) promptBoolean(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	defaultVal := false
	if v, ok := inst.Value(path); ok {
		defaultVal, _ = v.(bool)
	}
	for {
		resp, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: field.DisplayLabel(),
			Default: defaultVal,
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		ok, err := f.accept(ctx, inst, path, resp)
		if err != nil || ok {
			return err
		}
	}
}

func (f *Filler) promptNumber(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	defaultStr := ""
	if v, ok := inst.Value(path); ok && v != nil {
		defaultStr = fmt.Sprint(v)
	}
	parse := numberParser(field.Type)

	for {
		input, err := f.driver.Input(ctx, InputConfig{
			Message: field.DisplayLabel(),
			Default: defaultStr,
			Help:    field.Description,
			Check:   instanceCheck(ctx, inst, path, parse),
		})
		if err != nil {
			return err
		}

		parsed, err := parse(input)
		if err != nil {
			if err := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", path, err)); err != nil {
				return err
			}
			continue
		}
		ok, err := f.accept(ctx, inst, path, parsed)
		if err != nil || ok {
			return err
		}
	}
}

func (f *Filler) promptEnum(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	options := stringifyEnum(field.Enum)
	defaultIdx := -1
	if v, ok := inst.Value(path); ok {
		defaultIdx = optionIndex(options, fmt.Sprint(v))
	}

	for {
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      field.DisplayLabel(),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			if err := f.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", path)); err != nil {
				return err
			}
			continue
		}
		ok, err := f.accept(ctx, inst, path, field.Enum[idx])
		if err != nil || ok {
			return err
		}
	}
}

func (f *Filler) promptArray(ctx context.Context, inst *form.Instance, field model.Field, path string) error {
	if field.Items != nil && len(field.Items.Enum) > 0 {
		return f.promptMultiSelect(ctx, inst, field, *field.Items, path)
	}
	if field.Items == nil {
		return fmt.Errorf("prompt: array field %s has no item definition", path)
	}

	label := field.DisplayLabel()
	for {
		if err := inst.SetFieldValue(ctx, path, []any{}); err != nil {
			return err
		}

		add, err := f.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s?", label)})
		if err != nil {
			return err
		}
		for idx := 0; add; idx++ {
			if err := f.promptField(ctx, inst, *field.Items, fmt.Sprintf("%s[%d]", path, idx)); err != nil {
				return err
			}
			add, err = f.driver.Confirm(ctx, ConfirmConfig{Message: "Add another?"})
			if err != nil {
				return err
			}
		}

		errs, err := inst.ValidateForm(ctx)
		if err != nil {
			return err
		}
		msg := errs[path]
		if msg == "" {
			return nil
		}
		if err := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", path, msg)); err != nil {
			return err
		}
	}
}

func (f *Filler) promptMultiSelect(ctx context.Context, inst *form.Instance, field, items model.Field, path string) error {
	options := stringifyEnum(items.Enum)
	var current []string
	if v, ok := inst.Value(path); ok {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				current = append(current, fmt.Sprint(item))
			}
		}
	}
	var defaults []int
	for _, value := range current {
		if idx := optionIndex(options, value); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}

	for {
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.DisplayLabel(),
			Options:  options,
			Defaults: defaults,
			Help:     field.Description,
		})
		if err != nil {
			return err
		}
		selected := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(items.Enum) {
				selected = append(selected, items.Enum[idx])
			}
		}
		ok, err := f.accept(ctx, inst, path, selected)
		if err != nil || ok {
			return err
		}
	}
}

func currentString(inst *form.Instance, path string, fallback any) string {
	if v, ok := inst.Value(path); ok && v != nil {
		return fmt.Sprint(v)
	}
	if fallback != nil {
		return fmt.Sprint(fallback)
	}
	return ""
}

func stringifyEnum(values []any) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = fmt.Sprint(value)
	}
	return out
}
