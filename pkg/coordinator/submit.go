package coordinator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result collects submitted values: named slots map to their values
// (map[string]any) and groups map to a []map[string]any holding one entry per
// item in registration order.
type Result map[string]any

// SubmitFunc receives the outcome of SubmitAll.
type SubmitFunc func(valid bool, result Result)

// SubmitAll submits every registered instance concurrently and waits for all
// of them. Once every submission has finished it collects the values of the
// instances registered at that point, marks every path with a validation error
// as touched, recomputes overall validity, and hands (valid, result) to cb
// when cb is non-nil.
//
// A submission failure (validator or submit handler error) is returned after
// all submissions have completed; cb is not called in that case. Submissions
// are not cancelled when a sibling fails.
func (c *Coordinator) SubmitAll(ctx context.Context, cb SubmitFunc) (bool, Result, error) {
	entries := c.Entries()
	c.logger.Debug("submitting forms", zap.Int("count", len(entries)))

	var g errgroup.Group
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if _, err := entry.Form.SubmitForm(ctx); err != nil {
				return fmt.Errorf("coordinator: submit %s: %w", entry, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("form submission failed", zap.Error(err))
		return false, nil, err
	}

	result, valid := c.collect()
	c.logger.Debug("forms submitted", zap.Bool("valid", valid))
	if cb != nil {
		cb(valid, result)
	}
	return valid, result, nil
}

func (c *Coordinator) collect() (Result, bool) {
	c.mu.Lock()
	entries := c.entriesLocked()
	groups := make([]string, len(c.order))
	copy(groups, c.order)
	c.mu.Unlock()

	result := make(Result, len(entries)+len(groups))
	grouped := make(map[string][]map[string]any, len(groups))
	for _, name := range groups {
		grouped[name] = []map[string]any{}
	}

	valid := true
	for _, entry := range entries {
		values := c.sanitize(entry.Form.Values())
		for _, path := range entry.Form.Errors().Paths() {
			_ = entry.Form.SetFieldTouched(path, true)
		}
		if !entry.Form.IsValid() {
			valid = false
		}
		if entry.Grouped() {
			grouped[entry.Key] = append(grouped[entry.Key], values)
			continue
		}
		result[entry.Key] = values
	}
	for name, items := range grouped {
		result[name] = items
	}
	return result, valid
}

// Reset restores the instances of the given keys to their initial values. A
// key resets both the named slot and every item of the group with that name.
// Without keys every registered instance is reset. Unknown keys are ignored.
func (c *Coordinator) Reset(ctx context.Context, keys ...string) error {
	entries := c.Entries()
	selected := entries
	if len(keys) > 0 {
		wanted := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			wanted[key] = struct{}{}
		}
		selected = make([]Entry, 0, len(entries))
		for _, entry := range entries {
			if _, ok := wanted[entry.Key]; ok {
				selected = append(selected, entry)
			}
		}
	}

	var errs []error
	for _, entry := range selected {
		if err := entry.Form.ResetForm(ctx); err != nil {
			errs = append(errs, fmt.Errorf("coordinator: reset %s: %w", entry, err))
		}
	}
	c.logger.Debug("forms reset", zap.Strings("keys", keys), zap.Int("count", len(selected)))
	return errors.Join(errs...)
}
