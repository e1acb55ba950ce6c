package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// AnswerCheck validates a raw answer before the prompt returns. Drivers that
// can re-ask inline use it; others return the answer and leave the check to
// the caller.
type AnswerCheck func(answer string) error

// InputConfig configures a single line answer.
type InputConfig struct {
	Message string
	Default string
	Help    string
	Check   AnswerCheck
}

// ConfirmConfig configures a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single or multi choice question. Answers are
// reported as indices into Options.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line answer.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
	Check   AnswerCheck
}

// PromptDriver asks the questions a Filler needs. Tests substitute scripted
// drivers.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	in  terminal.FileReader
	out terminal.FileWriter
}

// NewSurveyDriver returns a PromptDriver backed by survey. Questions read from
// in and render to out, together with Info messages and answer check
// failures. Nil streams default to stdin and stdout; the CLI passes stderr as
// out so the submitted result alone reaches stdout.
func NewSurveyDriver(in terminal.FileReader, out terminal.FileWriter) PromptDriver {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{in: in, out: out}
}

func (d *surveyDriver) ask(ctx context.Context, question survey.Prompt, response any, check AnswerCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := []survey.AskOpt{survey.WithStdio(d.in, d.out, d.out)}
	if check != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			answer, _ := ans.(string)
			return check(answer)
		}))
	}
	if err := survey.AskOne(question, response, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, cfg.Check)
	return answer, err
}

// Password cannot show a default, so an empty answer falls back to it.
func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	check := cfg.Check
	if check != nil && cfg.Default != "" {
		check = func(answer string) error {
			if answer == "" {
				answer = cfg.Default
			}
			return cfg.Check(answer)
		}
	}
	var answer string
	if err := d.ask(ctx, &survey.Password{Message: cfg.Message, Help: cfg.Help}, &answer, check); err != nil {
		return "", err
	}
	if answer == "" {
		answer = cfg.Default
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, nil)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	question := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		question.Default = cfg.Options[cfg.DefaultIndex]
	}
	var answer string
	if err := d.ask(ctx, question, &answer, nil); err != nil {
		return -1, err
	}
	return optionIndex(cfg.Options, answer), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	question := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if chosen := optionsAt(cfg.Options, cfg.Defaults); len(chosen) > 0 {
		question.Default = chosen
	}
	var answers []string
	if err := d.ask(ctx, question, &answers, nil); err != nil {
		return nil, err
	}
	indices := make([]int, 0, len(answers))
	for _, answer := range answers {
		if idx := optionIndex(cfg.Options, answer); idx >= 0 {
			indices = append(indices, idx)
		}
	}
	return indices, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer, cfg.Check)
	return answer, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func optionIndex(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// optionsAt maps indices back to option labels, skipping out of range ones.
func optionsAt(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
