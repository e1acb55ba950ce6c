// Package coordinator composes several form instances into one aggregate unit.
//
// Forms are tracked either as named slots (one instance per key) or as groups
// (one instance per item id, for repeatable lists). The coordinator keeps two
// derived flags over everything registered: Valid (every instance valid) and
// Dirty (at least one instance dirty). Both are recomputed synchronously on
// every registration change and on every change notification an instance
// emits, so they never lag the registered set.
//
// Typical use binds a slot, invokes the binding with a form configuration and
// drives the returned instance:
//
//	c := coordinator.New(coordinator.WithLogger(logger))
//	profile, err := c.Bind("profile")(ctx, form.Config{InitialValues: values})
//	...
//	valid, result, err := c.SubmitAll(ctx, nil)
//
// Instances created through a binding always validate on creation and get a
// no-op submit handler when none is supplied, since submission is driven by
// SubmitAll. Owners release a slot with Unregister or UnregisterGroup.
package coordinator
