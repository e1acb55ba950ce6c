package coordinator

import (
	"errors"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-multiform/pkg/form"
)

var (
	// ErrEmptyKey is returned when a slot, group or item id is blank.
	ErrEmptyKey = errors.New("coordinator: key is required")
	// ErrNilInstance is returned when registering a nil form instance.
	ErrNilInstance = errors.New("coordinator: form instance is required")
	// ErrKeyConflict is returned when a key is used both as a named slot and
	// as a group.
	ErrKeyConflict = errors.New("coordinator: key already used by a different slot kind")
)

// Flags are the aggregate state derived from every registered instance.
type Flags struct {
	Valid bool
	Dirty bool
}

// Entry is a registered instance as visited by Each and Map. ID is empty for
// named slots.
type Entry struct {
	Key  string
	ID   string
	Form *form.Instance
}

// Grouped reports whether the entry belongs to a group.
func (e Entry) Grouped() bool {
	return e.ID != ""
}

func (e Entry) String() string {
	if e.Grouped() {
		return e.Key + "/" + e.ID
	}
	return e.Key
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for registration and submission events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSanitizer strips markup from every string value collected by SubmitAll
// using the provided policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(c *Coordinator) {
		c.sanitizer = policy
	}
}

// WithChangeListener registers fn to be called whenever the aggregate flags
// change.
func WithChangeListener(fn func(Flags)) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.listeners = append(c.listeners, listener{id: c.nextListener, fn: fn})
			c.nextListener++
		}
	}
}

type slot struct {
	instance    *form.Instance
	unsubscribe func()
}

type group struct {
	ids   []string
	items map[string]*slot
}

type listener struct {
	id int
	fn func(Flags)
}

// Coordinator tracks named and grouped form instances. It is safe for
// concurrent use. Change listeners and Each callbacks run without the
// coordinator lock held.
//
// Flag changes are delivered in the order they were computed, one at a time.
// A change raised while listeners are running (including from a listener) is
// queued and delivered by the goroutine already delivering, after the current
// listeners return.
type Coordinator struct {
	mu        sync.Mutex
	logger    *zap.Logger
	sanitizer *bluemonday.Policy

	// refreshMu serialises flag recomputation. It is never held while user
	// code runs.
	refreshMu   sync.Mutex
	pending     []notification
	dispatching bool

	names  []string
	named  map[string]*slot
	order  []string
	groups map[string]*group

	binds      map[string]BindFunc
	groupBinds map[string]map[string]BindFunc

	flags        Flags
	listeners    []listener
	nextListener int
}

// New constructs an empty Coordinator. With nothing registered the aggregate
// is valid and clean.
func New(options ...Option) *Coordinator {
	c := &Coordinator{
		logger:     zap.NewNop(),
		named:      make(map[string]*slot),
		groups:     make(map[string]*group),
		binds:      make(map[string]BindFunc),
		groupBinds: make(map[string]map[string]BindFunc),
		flags:      Flags{Valid: true},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// OnChange registers fn for aggregate flag changes and returns a function that
// removes it.
func (c *Coordinator) OnChange(fn func(Flags)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for idx, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:idx], c.listeners[idx+1:]...)
				return
			}
		}
	}
}

// Flags returns the current aggregate flags.
func (c *Coordinator) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// Valid reports whether every registered instance is valid.
func (c *Coordinator) Valid() bool {
	return c.Flags().Valid
}

// Dirty reports whether any registered instance is dirty.
func (c *Coordinator) Dirty() bool {
	return c.Flags().Dirty
}

// Each visits every registered instance: named slots in registration order,
// then groups in registration order with their items in registration order.
func (c *Coordinator) Each(fn func(Entry)) {
	for _, entry := range c.Entries() {
		fn(entry)
	}
}

// Map applies fn to every registered instance in Each order and collects the
// results.
func Map[R any](c *Coordinator, fn func(Entry) R) []R {
	entries := c.Entries()
	out := make([]R, 0, len(entries))
	for _, entry := range entries {
		out = append(out, fn(entry))
	}
	return out
}

// Entries returns a snapshot of the registered instances in Each order.
func (c *Coordinator) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entriesLocked()
}

func (c *Coordinator) entriesLocked() []Entry {
	out := make([]Entry, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, Entry{Key: name, Form: c.named[name].instance})
	}
	for _, name := range c.order {
		g := c.groups[name]
		for _, id := range g.ids {
			out = append(out, Entry{Key: name, ID: id, Form: g.items[id].instance})
		}
	}
	return out
}

// Instance returns the instance registered under name, or nil.
func (c *Coordinator) Instance(name string) *form.Instance {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.named[name]; ok {
		return s.instance
	}
	return nil
}

// GroupInstance returns the instance registered under (groupName, id), or nil.
func (c *Coordinator) GroupInstance(groupName, id string) *form.Instance {
	groupName, id = strings.TrimSpace(groupName), strings.TrimSpace(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[groupName]; ok {
		if s, ok := g.items[id]; ok {
			return s.instance
		}
	}
	return nil
}

// Instances returns a snapshot of the named slots.
func (c *Coordinator) Instances() map[string]*form.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*form.Instance, len(c.named))
	for name, s := range c.named {
		out[name] = s.instance
	}
	return out
}

// GroupInstances returns a snapshot of every group keyed by group name and
// item id. Groups that currently hold no items are included as empty maps.
func (c *Coordinator) GroupInstances() map[string]map[string]*form.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]map[string]*form.Instance, len(c.groups))
	for name, g := range c.groups {
		items := make(map[string]*form.Instance, len(g.items))
		for id, s := range g.items {
			items[id] = s.instance
		}
		out[name] = items
	}
	return out
}

// Values returns the current values of the named slot, or nil when the slot
// is not registered.
func (c *Coordinator) Values(name string) map[string]any {
	inst := c.Instance(name)
	if inst == nil {
		return nil
	}
	return inst.Values()
}

// GroupValues returns the current values of a group item, or nil when the
// item is not registered.
func (c *Coordinator) GroupValues(groupName, id string) map[string]any {
	inst := c.GroupInstance(groupName, id)
	if inst == nil {
		return nil
	}
	return inst.Values()
}

type notification struct {
	flags     Flags
	listeners []listener
}

// refresh recomputes the aggregate flags and notifies listeners when they
// changed. Instances are read without c.mu held. Callers must not hold c.mu.
func (c *Coordinator) refresh() {
	c.refreshMu.Lock()
	c.mu.Lock()
	entries := c.entriesLocked()
	c.mu.Unlock()

	next := Flags{Valid: true}
	for _, entry := range entries {
		if !entry.Form.IsValid() {
			next.Valid = false
		}
		if entry.Form.Dirty() {
			next.Dirty = true
		}
	}

	c.mu.Lock()
	changed := next != c.flags
	if changed {
		c.flags = next
		listeners := make([]listener, len(c.listeners))
		copy(listeners, c.listeners)
		c.pending = append(c.pending, notification{flags: next, listeners: listeners})
	}
	c.mu.Unlock()
	c.refreshMu.Unlock()

	if changed {
		c.dispatch()
	}
}

// dispatch delivers queued notifications unless another call is already
// delivering them.
func (c *Coordinator) dispatch() {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	drained := false
	defer func() {
		// a panicking listener must not leave the queue blocked
		if !drained {
			c.mu.Lock()
			c.dispatching = false
			c.mu.Unlock()
		}
	}()

	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		c.emit(next)
		c.mu.Lock()
	}
	c.dispatching = false
	drained = true
	c.mu.Unlock()
}

func (c *Coordinator) emit(n notification) {
	c.logger.Debug("aggregate flags changed",
		zap.Bool("valid", n.flags.Valid),
		zap.Bool("dirty", n.flags.Dirty),
	)
	for _, l := range n.listeners {
		l.fn(n.flags)
	}
}
