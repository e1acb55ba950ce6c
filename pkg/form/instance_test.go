package form_test

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-multiform/pkg/form"
)

func maxLength(field string, limit int) form.ValidateFunc {
	return func(_ context.Context, values map[string]any) (form.Errors, error) {
		errs := form.Errors{}
		if s, ok := values[field].(string); ok && utf8.RuneCountInString(s) > limit {
			errs[field] = "Too long"
		}
		return errs, nil
	}
}

func TestNew_ValidateOnMount(t *testing.T) {
	ctx := context.Background()
	inst, err := form.New(ctx, form.Config{
		InitialValues:   map[string]any{"email": "way-too-long"},
		Validate:        maxLength("email", 5),
		ValidateOnMount: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if inst.IsValid() {
		t.Fatalf("expected eager validation to flag the initial value")
	}
	if got := inst.Error("email"); got != "Too long" {
		t.Fatalf("unexpected error message %q", got)
	}
}

func TestNew_ValidatorFailure(t *testing.T) {
	boom := errors.New("schema exploded")
	_, err := form.New(context.Background(), form.Config{
		Validate: func(context.Context, map[string]any) (form.Errors, error) {
			return nil, boom
		},
		ValidateOnMount: true,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected validator failure to propagate, got %v", err)
	}
}

func TestInstance_DirtyTracksInitialValues(t *testing.T) {
	ctx := context.Background()
	inst, err := form.New(ctx, form.Config{InitialValues: map[string]any{"a": ""}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if inst.Dirty() {
		t.Fatalf("fresh instance must not be dirty")
	}
	if err := inst.SetFieldValue(ctx, "a", "changed"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !inst.Dirty() {
		t.Fatalf("expected dirty after change")
	}
	if err := inst.SetFieldValue(ctx, "a", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if inst.Dirty() {
		t.Fatalf("expected clean after restoring the initial value")
	}
}

func TestInstance_InitialValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	seed := map[string]any{"owner": map[string]any{"name": "ada"}}
	inst, err := form.New(ctx, form.Config{InitialValues: seed})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	seed["owner"].(map[string]any)["name"] = "mutated"

	if diff := cmp.Diff(map[string]any{"owner": map[string]any{"name": "ada"}}, inst.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_SubmitForm(t *testing.T) {
	ctx := context.Background()
	var submitted map[string]any
	inst, err := form.New(ctx, form.Config{
		InitialValues: map[string]any{"email": "abc", "tags": []any{"x"}},
		Validate:      maxLength("email", 5),
		OnSubmit: func(_ context.Context, values map[string]any) (any, error) {
			submitted = values
			return "ok", nil
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := inst.SubmitForm(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result != "ok" {
		t.Fatalf("unexpected submit result %v", result)
	}
	if diff := cmp.Diff(map[string]any{"email": "abc", "tags": []any{"x"}}, submitted); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]bool{"email": true, "tags[0]": true}, inst.Touched()); diff != "" {
		t.Fatalf("touched mismatch (-want +got):\n%s", diff)
	}
	if inst.SubmitCount() != 1 || inst.IsSubmitting() {
		t.Fatalf("unexpected submit bookkeeping: count=%d submitting=%v", inst.SubmitCount(), inst.IsSubmitting())
	}
}

func TestInstance_SubmitFormWithFieldErrorsSkipsHandler(t *testing.T) {
	ctx := context.Background()
	called := false
	inst, err := form.New(ctx, form.Config{
		InitialValues: map[string]any{"email": "far-too-long"},
		Validate:      maxLength("email", 5),
		OnSubmit: func(context.Context, map[string]any) (any, error) {
			called = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := inst.SubmitForm(ctx)
	if err != nil || result != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", result, err)
	}
	if called {
		t.Fatalf("OnSubmit must not run while field errors remain")
	}
	if inst.IsValid() {
		t.Fatalf("expected submit validation to record errors")
	}
}

func TestInstance_SubmitFormPropagatesHandlerError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend unavailable")
	inst, err := form.New(ctx, form.Config{
		OnSubmit: func(context.Context, map[string]any) (any, error) {
			return nil, boom
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := inst.SubmitForm(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestInstance_ResetForm(t *testing.T) {
	ctx := context.Background()
	inst, err := form.New(ctx, form.Config{
		InitialValues:   map[string]any{"email": ""},
		Validate:        maxLength("email", 5),
		ValidateOnMount: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := inst.SetFieldValue(ctx, "email", "much-too-long"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := inst.SetFieldTouched("email", true); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if inst.IsValid() || !inst.Dirty() {
		t.Fatalf("expected invalid dirty state before reset")
	}

	if err := inst.ResetForm(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !inst.IsValid() || inst.Dirty() || inst.IsTouched("email") {
		t.Fatalf("expected pristine state after reset")
	}
}

func TestInstance_SkipValidateOnChange(t *testing.T) {
	ctx := context.Background()
	inst, err := form.New(ctx, form.Config{
		Validate:             maxLength("email", 2),
		SkipValidateOnChange: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := inst.SetFieldValue(ctx, "email", "long value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !inst.IsValid() {
		t.Fatalf("value change must not validate when skipped")
	}
	if _, err := inst.ValidateForm(ctx); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if inst.IsValid() {
		t.Fatalf("explicit validation must record errors")
	}
}

func TestInstance_SubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	inst, err := form.New(ctx, form.Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	calls := 0
	unsubscribe := inst.Subscribe(func(*form.Instance) { calls++ })

	_ = inst.SetFieldValue(ctx, "a", 1)
	_ = inst.SetFieldTouched("a", true)
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}

	unsubscribe()
	unsubscribe()
	_ = inst.SetFieldValue(ctx, "a", 2)
	if calls != 2 {
		t.Fatalf("expected no notifications after unsubscribe, got %d", calls)
	}
}

func TestComposeValidators(t *testing.T) {
	first := func(context.Context, map[string]any) (form.Errors, error) {
		return form.Errors{"a": "first"}, nil
	}
	second := func(context.Context, map[string]any) (form.Errors, error) {
		return form.Errors{"a": "second", "b": "second"}, nil
	}

	errs, err := form.ComposeValidators(first, nil, second)(context.Background(), nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if diff := cmp.Diff(form.Errors{"a": "first", "b": "second"}, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if form.ComposeValidators(nil, nil) != nil {
		t.Fatalf("expected nil validator when nothing is supplied")
	}
}

func TestInstance_ValidatorCanReadInstance(t *testing.T) {
	ctx := context.Background()
	var inst *form.Instance
	compareWithTouched := func(_ context.Context, values map[string]any) (form.Errors, error) {
		if inst != nil && inst.IsTouched("email") && values["email"] == "" {
			return form.Errors{"email": "required once touched"}, nil
		}
		return nil, nil
	}

	inst, err := form.New(ctx, form.Config{
		InitialValues:   map[string]any{"email": ""},
		Validate:        compareWithTouched,
		ValidateOnMount: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !inst.IsValid() {
		t.Fatalf("untouched form must start valid")
	}

	result, err := inst.SubmitForm(ctx)
	if err != nil || result != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", result, err)
	}
	if got := inst.Error("email"); got != "required once touched" {
		t.Fatalf("unexpected error message %q", got)
	}
}
