package model

// Decorator enriches a form definition after it has been loaded or derived
// from an OpenAPI operation.
type Decorator interface {
	Decorate(*FormDefinition) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormDefinition) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(def *FormDefinition) error {
	return fn(def)
}

// Apply runs decorators in order and stops at the first failure.
func Apply(def *FormDefinition, decorators ...Decorator) error {
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(def); err != nil {
			return err
		}
	}
	return nil
}
