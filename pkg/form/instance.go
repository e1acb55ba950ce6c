package form

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Listener is notified after the instance state changes.
type Listener func(*Instance)

type subscription struct {
	id int
	fn Listener
}

// Instance holds the state of one form. It is safe for concurrent use.
// Validators receive a snapshot of the values and run without the instance
// lock held, so they may read other instances or the coordinator that owns
// them.
type Instance struct {
	mu          sync.RWMutex
	config      Config
	initial     map[string]any
	values      map[string]any
	errors      Errors
	touched     map[string]bool
	submitting  bool
	submitCount int

	// version counts value changes; validated is the version the stored
	// errors were computed from.
	version   uint64
	validated uint64

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int
}

// New builds an Instance from cfg. With ValidateOnMount set the validator runs
// before New returns and a validator failure is reported as an error.
func New(ctx context.Context, cfg Config) (*Instance, error) {
	inst := &Instance{
		config:  cfg,
		initial: cloneValues(cfg.InitialValues),
		values:  cloneValues(cfg.InitialValues),
		errors:  make(Errors),
		touched: make(map[string]bool),
	}
	if cfg.ValidateOnMount {
		if _, _, err := inst.validate(ctx); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (i *Instance) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	i.listenersMu.Lock()
	id := i.nextID
	i.nextID++
	i.listeners = append(i.listeners, subscription{id: id, fn: fn})
	i.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.listenersMu.Lock()
			defer i.listenersMu.Unlock()
			for idx, sub := range i.listeners {
				if sub.id == id {
					i.listeners = append(i.listeners[:idx], i.listeners[idx+1:]...)
					return
				}
			}
		})
	}
}

func (i *Instance) notify() {
	i.listenersMu.Lock()
	subs := make([]subscription, len(i.listeners))
	copy(subs, i.listeners)
	i.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(i)
	}
}

// Values returns a deep copy of the current values.
func (i *Instance) Values() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneValues(i.values)
}

// InitialValues returns a deep copy of the values the form was seeded with.
func (i *Instance) InitialValues() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneValues(i.initial)
}

// Value resolves a single field.
func (i *Instance) Value(path string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	value, ok := GetPath(i.values, path)
	if !ok {
		return nil, false
	}
	return deepCopy(value), true
}

// Errors returns a copy of the current validation errors.
func (i *Instance) Errors() Errors {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.errors.clone()
}

// Error returns the message recorded for path, if any.
func (i *Instance) Error(path string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.errors[NormalizePath(path)]
}

// Touched returns a copy of the touched flags.
func (i *Instance) Touched() map[string]bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]bool, len(i.touched))
	for path, flag := range i.touched {
		out[path] = flag
	}
	return out
}

// IsTouched reports whether path has been marked touched.
func (i *Instance) IsTouched(path string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.touched[NormalizePath(path)]
}

// IsValid reports whether the last validation pass produced no errors.
func (i *Instance) IsValid() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.errors) == 0
}

// Dirty reports whether the values differ from the initial values.
func (i *Instance) Dirty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !reflect.DeepEqual(i.values, i.initial)
}

// IsSubmitting reports whether SubmitForm is in flight.
func (i *Instance) IsSubmitting() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.submitting
}

// SubmitCount reports how many times SubmitForm has been called since the
// last reset.
func (i *Instance) SubmitCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.submitCount
}

// SetFieldValue writes a single field and revalidates unless
// SkipValidateOnChange is set.
func (i *Instance) SetFieldValue(ctx context.Context, path string, value any) error {
	i.mu.Lock()
	if err := SetPath(i.values, path, deepCopy(value)); err != nil {
		i.mu.Unlock()
		return err
	}
	i.version++
	i.mu.Unlock()

	err := i.validateOnChange(ctx)
	i.notify()
	return err
}

// SetValues replaces every value and revalidates unless SkipValidateOnChange
// is set.
func (i *Instance) SetValues(ctx context.Context, values map[string]any) error {
	i.mu.Lock()
	i.values = cloneValues(values)
	i.version++
	i.mu.Unlock()

	err := i.validateOnChange(ctx)
	i.notify()
	return err
}

// SetFieldTouched flags path as touched (or clears the flag).
func (i *Instance) SetFieldTouched(path string, touched bool) error {
	key := NormalizePath(path)
	if key == "" {
		return ErrEmptyPath
	}
	i.mu.Lock()
	if touched {
		i.touched[key] = true
	} else {
		delete(i.touched, key)
	}
	i.mu.Unlock()

	i.notify()
	return nil
}

// SetErrors replaces the error map without running the validator.
func (i *Instance) SetErrors(errs Errors) {
	i.mu.Lock()
	i.errors = normalizeErrors(errs)
	i.mu.Unlock()

	i.notify()
}

// SetFieldError records msg for path. An empty message clears the entry.
func (i *Instance) SetFieldError(path, msg string) error {
	key := NormalizePath(path)
	if key == "" {
		return ErrEmptyPath
	}
	i.mu.Lock()
	if strings.TrimSpace(msg) == "" {
		delete(i.errors, key)
	} else {
		i.errors[key] = msg
	}
	i.mu.Unlock()

	i.notify()
	return nil
}

// ValidateForm runs the validator against the current values and stores the
// result. A validator failure leaves the previous errors untouched.
func (i *Instance) ValidateForm(ctx context.Context) (Errors, error) {
	_, errs, err := i.validate(ctx)
	i.notify()
	if err != nil {
		return nil, err
	}
	return errs.clone(), nil
}

// ResetForm restores the initial values and clears touched flags, errors and
// the submit count. Forms configured with ValidateOnMount are revalidated.
func (i *Instance) ResetForm(ctx context.Context) error {
	i.mu.Lock()
	i.values = cloneValues(i.initial)
	i.touched = make(map[string]bool)
	i.errors = make(Errors)
	i.submitCount = 0
	i.submitting = false
	i.version++
	i.validated = i.version
	revalidate := i.config.ValidateOnMount
	i.mu.Unlock()

	var err error
	if revalidate {
		_, _, err = i.validate(ctx)
	}
	i.notify()
	return err
}

// SubmitForm touches every value path, validates, and hands the values to
// OnSubmit when no field errors remain. A form with field errors resolves to
// (nil, nil); validator and OnSubmit failures are returned as errors.
func (i *Instance) SubmitForm(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.submitCount++
	i.submitting = true
	for path := range Flatten(i.values) {
		if key := NormalizePath(path); key != "" {
			i.touched[key] = true
		}
	}
	onSubmit := i.config.OnSubmit
	i.mu.Unlock()

	snapshot, errs, err := i.validate(ctx)
	if err != nil || len(errs) > 0 || onSubmit == nil {
		i.setSubmitting(false)
		i.notify()
		return nil, err
	}
	i.notify()

	result, submitErr := onSubmit(ctx, snapshot)
	i.setSubmitting(false)
	i.notify()
	if submitErr != nil {
		return nil, submitErr
	}
	return result, nil
}

func (i *Instance) setSubmitting(flag bool) {
	i.mu.Lock()
	i.submitting = flag
	i.mu.Unlock()
}

func (i *Instance) validateOnChange(ctx context.Context) error {
	if i.config.SkipValidateOnChange {
		return nil
	}
	_, _, err := i.validate(ctx)
	return err
}

// validate runs the validator on a snapshot of the values and returns that
// snapshot with the errors it produced. The errors are stored unless a pass
// over newer values already stored its own.
func (i *Instance) validate(ctx context.Context) (map[string]any, Errors, error) {
	i.mu.RLock()
	snapshot := cloneValues(i.values)
	version := i.version
	i.mu.RUnlock()

	errs := make(Errors)
	if i.config.Validate != nil {
		reported, err := i.config.Validate(ctx, cloneValues(snapshot))
		if err != nil {
			return nil, nil, fmt.Errorf("form: validate: %w", err)
		}
		errs = normalizeErrors(reported)
	}

	i.mu.Lock()
	if version >= i.validated {
		i.validated = version
		i.errors = errs.clone()
	}
	i.mu.Unlock()
	return snapshot, errs, nil
}

func normalizeErrors(errs Errors) Errors {
	out := make(Errors, len(errs))
	for path, msg := range errs {
		key := NormalizePath(path)
		if key == "" || strings.TrimSpace(msg) == "" {
			continue
		}
		out[key] = msg
	}
	return out
}
