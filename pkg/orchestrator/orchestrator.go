package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-multiform/pkg/coordinator"
	"github.com/goliatone/go-multiform/pkg/definition"
	"github.com/goliatone/go-multiform/pkg/form"
	"github.com/goliatone/go-multiform/pkg/model"
	"github.com/goliatone/go-multiform/pkg/prompt"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFiller injects the prompt filler used to answer each form.
func WithFiller(filler *prompt.Filler) Option {
	return func(o *Orchestrator) {
		o.filler = filler
	}
}

// WithCoordinatorOptions forwards options to every coordinator created by Run.
func WithCoordinatorOptions(options ...coordinator.Option) Option {
	return func(o *Orchestrator) {
		o.coordinatorOptions = append(o.coordinatorOptions, options...)
	}
}

// WithDecorators registers decorators applied to every definition before it is
// normalised and bound.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithValidators appends validators to the compiled rules of the named form.
func WithValidators(formName string, validators ...form.ValidateFunc) Option {
	return func(o *Orchestrator) {
		if o.validators == nil {
			o.validators = make(map[string][]form.ValidateFunc)
		}
		o.validators[formName] = append(o.validators[formName], validators...)
	}
}

// WithIDGenerator overrides how item ids are minted for repeatable forms.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger used for session events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator binds definitions into a coordinator, fills them and submits
// the aggregate.
type Orchestrator struct {
	filler             *prompt.Filler
	coordinatorOptions []coordinator.Option
	decorators         []model.Decorator
	validators         map[string][]form.ValidateFunc
	newID              func() string
	logger             *zap.Logger
}

// New constructs an Orchestrator. Without WithFiller it prompts through the
// survey driver.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.filler == nil {
		o.filler = prompt.New(prompt.WithLogger(o.logger))
	}
	return o
}

// Request describes one session.
type Request struct {
	// Definitions are bound in order. Repeatable definitions become groups.
	Definitions []model.FormDefinition

	// MaxItems caps the number of items prompted per repeatable definition.
	// Zero means no cap.
	MaxItems int
}

// Outcome is the aggregate state after SubmitAll.
type Outcome struct {
	Valid  bool
	Result coordinator.Result
}

// Run prepares every definition, prompts for each form and submits them all.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Outcome, error) {
	if ctx == nil {
		return Outcome{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if len(req.Definitions) == 0 {
		return Outcome{}, errors.New("orchestrator: at least one form definition is required")
	}

	forms := make([]preparedForm, 0, len(req.Definitions))
	for _, def := range req.Definitions {
		p, err := o.prepare(def)
		if err != nil {
			return Outcome{}, err
		}
		forms = append(forms, p)
	}

	options := append([]coordinator.Option{coordinator.WithLogger(o.logger)}, o.coordinatorOptions...)
	coord := coordinator.New(options...)

	for _, p := range forms {
		var err error
		if p.def.Repeatable {
			err = o.fillGroup(ctx, coord, p, req.MaxItems)
		} else {
			err = o.fillNamed(ctx, coord, p)
		}
		if err != nil {
			return Outcome{}, err
		}
	}

	valid, result, err := coord.SubmitAll(ctx, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("orchestrator: submit: %w", err)
	}
	o.logger.Info("session submitted", zap.Bool("valid", valid), zap.Int("forms", len(forms)))
	return Outcome{Valid: valid, Result: result}, nil
}

type preparedForm struct {
	def    model.FormDefinition
	config form.Config
}

func (o *Orchestrator) prepare(def model.FormDefinition) (preparedForm, error) {
	def = def.Clone()
	if err := model.Apply(&def, o.decorators...); err != nil {
		return preparedForm{}, fmt.Errorf("orchestrator: decorate form %q: %w", def.Name, err)
	}
	def, err := definition.Normalize(def)
	if err != nil {
		return preparedForm{}, fmt.Errorf("orchestrator: %w", err)
	}
	cfg, err := definition.Config(def, o.validators[def.Name]...)
	if err != nil {
		return preparedForm{}, fmt.Errorf("orchestrator: %w", err)
	}
	return preparedForm{def: def, config: cfg}, nil
}

func (o *Orchestrator) fillNamed(ctx context.Context, coord *coordinator.Coordinator, p preparedForm) error {
	inst, err := coord.Bind(p.def.Name)(ctx, p.config)
	if err != nil {
		return fmt.Errorf("orchestrator: bind %q: %w", p.def.Name, err)
	}
	if err := o.filler.Fill(ctx, inst, p.def); err != nil {
		return fmt.Errorf("orchestrator: fill %q: %w", p.def.Name, err)
	}
	return nil
}

func (o *Orchestrator) fillGroup(ctx context.Context, coord *coordinator.Coordinator, p preparedForm, maxItems int) error {
	driver := o.filler.Driver()
	label := p.def.DisplayLabel()

	add, err := driver.Confirm(ctx, prompt.ConfirmConfig{Message: fmt.Sprintf("Add %s?", label), Default: true})
	if err != nil {
		return err
	}
	for count := 0; add; count++ {
		id := o.newID()
		inst, err := coord.BindGroup(p.def.Name, id)(ctx, p.config)
		if err != nil {
			return fmt.Errorf("orchestrator: bind %s/%s: %w", p.def.Name, id, err)
		}
		if err := o.filler.Fill(ctx, inst, p.def); err != nil {
			return fmt.Errorf("orchestrator: fill %s/%s: %w", p.def.Name, id, err)
		}
		if maxItems > 0 && count+1 >= maxItems {
			break
		}
		add, err = driver.Confirm(ctx, prompt.ConfirmConfig{Message: fmt.Sprintf("Add another %s?", label)})
		if err != nil {
			return err
		}
	}
	return nil
}
