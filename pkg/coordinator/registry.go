package coordinator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-multiform/pkg/form"
)

// BindFunc creates the instance for a slot on first call and returns the
// registered instance on later calls. The configuration is only consulted
// when an instance has to be created.
type BindFunc func(ctx context.Context, cfg form.Config) (*form.Instance, error)

// Bind returns the binding for the named slot. The same function is returned
// until the slot is unregistered.
func (c *Coordinator) Bind(name string) BindFunc {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if fn, ok := c.binds[name]; ok {
		return fn
	}

	fn := func(ctx context.Context, cfg form.Config) (*form.Instance, error) {
		if name == "" {
			return nil, ErrEmptyKey
		}
		if inst := c.Instance(name); inst != nil {
			return inst, nil
		}
		if c.hasGroup(name) {
			return nil, fmt.Errorf("%w: %q is a group", ErrKeyConflict, name)
		}

		inst, err := newInstance(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("coordinator: bind %q: %w", name, err)
		}
		return c.register(name, inst, true)
	}
	if name != "" {
		c.binds[name] = fn
	}
	return fn
}

// BindGroup returns the binding for one item of a group. The group itself is
// created immediately so it appears in SubmitAll results even before any item
// registers.
func (c *Coordinator) BindGroup(groupName, id string) BindFunc {
	groupName = strings.TrimSpace(groupName)
	id = strings.TrimSpace(id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if fn, ok := c.groupBinds[groupName][id]; ok {
		return fn
	}

	fn := func(ctx context.Context, cfg form.Config) (*form.Instance, error) {
		if groupName == "" || id == "" {
			return nil, ErrEmptyKey
		}
		if inst := c.GroupInstance(groupName, id); inst != nil {
			return inst, nil
		}
		if c.Instance(groupName) != nil {
			return nil, fmt.Errorf("%w: %q is a named slot", ErrKeyConflict, groupName)
		}

		inst, err := newInstance(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("coordinator: bind %s/%s: %w", groupName, id, err)
		}
		return c.registerGroup(groupName, id, inst, true)
	}

	if groupName == "" || id == "" {
		return fn
	}
	if _, named := c.named[groupName]; !named {
		c.ensureGroupLocked(groupName)
	}
	if c.groupBinds[groupName] == nil {
		c.groupBinds[groupName] = make(map[string]BindFunc)
	}
	c.groupBinds[groupName][id] = fn
	return fn
}

// Register tracks inst under the named slot, replacing any instance already
// there.
func (c *Coordinator) Register(name string, inst *form.Instance) error {
	_, err := c.register(strings.TrimSpace(name), inst, false)
	return err
}

// RegisterGroup tracks inst as item id of groupName, replacing any instance
// already registered for that item.
func (c *Coordinator) RegisterGroup(groupName, id string, inst *form.Instance) error {
	_, err := c.registerGroup(strings.TrimSpace(groupName), strings.TrimSpace(id), inst, false)
	return err
}

// Unregister releases the named slot and its binding. It reports whether a
// slot was registered.
func (c *Coordinator) Unregister(name string) bool {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	s, ok := c.named[name]
	if ok {
		delete(c.named, name)
		c.names = removeString(c.names, name)
	}
	delete(c.binds, name)
	c.mu.Unlock()

	if !ok {
		return false
	}
	s.unsubscribe()
	c.logger.Debug("form unregistered", zap.String("slot", name))
	c.refresh()
	return true
}

// UnregisterGroup releases one group item and its binding. The group stays
// known, so SubmitAll keeps reporting it (possibly as an empty list). It
// reports whether the item was registered.
func (c *Coordinator) UnregisterGroup(groupName, id string) bool {
	groupName = strings.TrimSpace(groupName)
	id = strings.TrimSpace(id)

	c.mu.Lock()
	var (
		s  *slot
		ok bool
	)
	if g, exists := c.groups[groupName]; exists {
		if s, ok = g.items[id]; ok {
			delete(g.items, id)
			g.ids = removeString(g.ids, id)
		}
	}
	if binds, exists := c.groupBinds[groupName]; exists {
		delete(binds, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	s.unsubscribe()
	c.logger.Debug("form unregistered", zap.String("group", groupName), zap.String("id", id))
	c.refresh()
	return true
}

// register stores inst under name. When keepExisting is set and another
// instance won the race to register, that instance is returned instead.
func (c *Coordinator) register(name string, inst *form.Instance, keepExisting bool) (*form.Instance, error) {
	if name == "" {
		return nil, ErrEmptyKey
	}
	if inst == nil {
		return nil, ErrNilInstance
	}

	c.mu.Lock()
	if _, isGroup := c.groups[name]; isGroup {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %q is a group", ErrKeyConflict, name)
	}
	previous, exists := c.named[name]
	if exists && (keepExisting || previous.instance == inst) {
		c.mu.Unlock()
		return previous.instance, nil
	}
	c.named[name] = &slot{
		instance:    inst,
		unsubscribe: inst.Subscribe(func(*form.Instance) { c.refresh() }),
	}
	if !exists {
		c.names = append(c.names, name)
	}
	c.mu.Unlock()

	if exists {
		previous.unsubscribe()
	}
	c.logger.Debug("form registered", zap.String("slot", name), zap.Bool("replaced", exists))
	c.refresh()
	return inst, nil
}

func (c *Coordinator) registerGroup(groupName, id string, inst *form.Instance, keepExisting bool) (*form.Instance, error) {
	if groupName == "" || id == "" {
		return nil, ErrEmptyKey
	}
	if inst == nil {
		return nil, ErrNilInstance
	}

	c.mu.Lock()
	if _, isNamed := c.named[groupName]; isNamed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %q is a named slot", ErrKeyConflict, groupName)
	}
	g := c.ensureGroupLocked(groupName)
	previous, exists := g.items[id]
	if exists && (keepExisting || previous.instance == inst) {
		c.mu.Unlock()
		return previous.instance, nil
	}
	g.items[id] = &slot{
		instance:    inst,
		unsubscribe: inst.Subscribe(func(*form.Instance) { c.refresh() }),
	}
	if !exists {
		g.ids = append(g.ids, id)
	}
	c.mu.Unlock()

	if exists {
		previous.unsubscribe()
	}
	c.logger.Debug("form registered",
		zap.String("group", groupName),
		zap.String("id", id),
		zap.Bool("replaced", exists),
	)
	c.refresh()
	return inst, nil
}

func (c *Coordinator) ensureGroupLocked(name string) *group {
	g, ok := c.groups[name]
	if !ok {
		g = &group{items: make(map[string]*slot)}
		c.groups[name] = g
		c.order = append(c.order, name)
	}
	return g
}

func (c *Coordinator) hasGroup(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[name]
	return ok
}

func newInstance(ctx context.Context, cfg form.Config) (*form.Instance, error) {
	if cfg.OnSubmit == nil {
		cfg.OnSubmit = func(context.Context, map[string]any) (any, error) { return nil, nil }
	}
	cfg.ValidateOnMount = true
	return form.New(ctx, cfg)
}

func removeString(list []string, target string) []string {
	for idx, value := range list {
		if value == target {
			return append(list[:idx], list[idx+1:]...)
		}
	}
	return list
}
