// context.go: Shared plugin context, per-plugin scopes, and the helper namespace
//
// The context is an explicit object owned by the runtime and passed by
// reference into every lifecycle, hook, and event call. There is no ambient
// registry: external callers get at plugin helpers only through the narrow
// read-only HelperReader the runtime exposes.
//
// State is namespaced per plugin. Callbacks never see the raw context; they
// receive a PluginScope bound to their plugin's name, so writes land in the
// owning namespace only while reads of a foreign namespace stay possible but
// explicit. That is the structural replacement for the duck-typed casts the
// original design flagged.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"time"
)

// HelperFunc is a callable a plugin publishes into the shared helper
// namespace during setup. Later-ordered plugins and the host call helpers by
// name; arguments and result are intentionally untyped at this seam, with
// typed wrappers layered on top by each plugin.
type HelperFunc func(args ...any) (any, error)

// HelperReader is the read-only accessor external callers receive. It cannot
// register or replace helpers.
type HelperReader interface {
	// Helper returns the helper registered under name, if any.
	Helper(name string) (HelperFunc, bool)

	// Call invokes a helper by name, returning a coded error if it is not
	// registered.
	Call(name string, args ...any) (any, error)
}

// TableProps is the read-only host configuration snapshot plugins consume at
// setup. Config carries the typed runtime configuration; Values carries
// free-form host props.
type TableProps struct {
	Config TableConfig
	values map[string]any
}

// Value returns a free-form host prop by key.
func (p TableProps) Value(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

type helperEntry struct {
	owner string
	fn    HelperFunc
}

// PluginContext is the shared object threaded through every plugin call:
// namespaced mutable state, the write-once helper namespace, and the
// read-only props snapshot. The lifecycle orchestrator owns its creation and
// teardown; plugins touch it only through their scope.
type PluginContext struct {
	state   map[string]any
	helpers map[string]helperEntry
	inert   map[string]bool
	props   TableProps

	scheduler *Scheduler
	store     WidthStore
	logger    Logger
	surface   RenderSurface
}

// NewPluginContext assembles a context from the runtime's services. The
// surface is attached later, at mount time.
func NewPluginContext(props TableProps, scheduler *Scheduler, store WidthStore, logger Logger) *PluginContext {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &PluginContext{
		state:     make(map[string]any),
		helpers:   make(map[string]helperEntry),
		inert:     make(map[string]bool),
		props:     props,
		scheduler: scheduler,
		store:     store,
		logger:    logger,
	}
}

// Helper implements HelperReader. A helper whose owning plugin went inert is
// reported as absent: an inert plugin contributes no behavior.
func (c *PluginContext) Helper(name string) (HelperFunc, bool) {
	entry, ok := c.helpers[name]
	if !ok || c.inert[entry.owner] {
		return nil, false
	}
	return entry.fn, true
}

// Call implements HelperReader.
func (c *PluginContext) Call(name string, args ...any) (any, error) {
	entry, ok := c.helpers[name]
	if !ok {
		return nil, NewHelperNotFoundError(name)
	}
	if c.inert[entry.owner] {
		return nil, NewPluginInertError(entry.owner, name)
	}
	return entry.fn(args...)
}

// markInert records that a plugin failed a lifecycle stage, hiding its
// helpers from every later caller. Called by the orchestrator.
func (c *PluginContext) markInert(plugin string) {
	c.inert[plugin] = true
}

// attachSurface records the render surface once the host mounted. Called by
// the orchestrator before the onMount stage runs.
func (c *PluginContext) attachSurface(surface RenderSurface) {
	c.surface = surface
}

// updateProps replaces the props snapshot. Called by the runtime before the
// update stage runs.
func (c *PluginContext) updateProps(props TableProps) {
	c.props = props
}

// teardown clears every namespace and helper. Called after the uninstall
// stage; a scope that somehow survives sees empty state rather than stale
// entries.
func (c *PluginContext) teardown() {
	c.state = make(map[string]any)
	c.helpers = make(map[string]helperEntry)
	c.inert = make(map[string]bool)
	c.surface = nil
}

// scopeFor binds a scope to one plugin name.
func (c *PluginContext) scopeFor(name string) *PluginScope {
	return &PluginScope{
		name:   name,
		ctx:    c,
		logger: c.logger.With("component", name),
	}
}

// PluginScope is the view of the shared context handed to one plugin's
// callbacks. Writes are bound to the plugin's own namespace; reads of other
// namespaces go through Peek and are therefore visible in the code, not
// hidden behind a cast.
type PluginScope struct {
	name   string
	ctx    *PluginContext
	logger Logger
}

// Name returns the owning plugin's name.
func (s *PluginScope) Name() string {
	return s.name
}

// State returns the plugin's own namespace value, or false if install has
// not seeded it yet.
func (s *PluginScope) State() (any, bool) {
	v, ok := s.ctx.state[s.name]
	return v, ok
}

// SetState replaces the plugin's own namespace value. Install callbacks use
// this to seed the namespace's initial shape.
func (s *PluginScope) SetState(value any) {
	s.ctx.state[s.name] = value
}

// Peek reads another plugin's namespace. Cross-plugin reads are part of the
// composition model; writes to a foreign namespace are structurally
// impossible through a scope.
func (s *PluginScope) Peek(plugin string) (any, bool) {
	v, ok := s.ctx.state[plugin]
	return v, ok
}

// RegisterHelper publishes a helper under the given name. Helpers are
// write-once: registering an already-taken name returns a coded error and
// leaves the original in place.
func (s *PluginScope) RegisterHelper(name string, fn HelperFunc) error {
	if existing, ok := s.ctx.helpers[name]; ok {
		return NewHelperRedefinedError(name, existing.owner)
	}
	s.ctx.helpers[name] = helperEntry{owner: s.name, fn: fn}
	return nil
}

// Helper returns a helper registered by this or an earlier-ordered plugin.
func (s *PluginScope) Helper(name string) (HelperFunc, bool) {
	return s.ctx.Helper(name)
}

// Props returns the read-only host configuration snapshot.
func (s *PluginScope) Props() TableProps {
	return s.ctx.props
}

// Logger returns this plugin's component-tagged logger.
func (s *PluginScope) Logger() Logger {
	return s.logger
}

// Store returns the external persisted store, or nil when the host supplied
// none.
func (s *PluginScope) Store() WidthStore {
	return s.ctx.store
}

// Surface returns the render surface, or nil before mount.
func (s *PluginScope) Surface() RenderSurface {
	return s.ctx.surface
}

// Defer schedules fn once after delay, owned by this plugin. The handle is
// canceled automatically when the plugin uninstalls.
func (s *PluginScope) Defer(delay time.Duration, fn func()) *TaskHandle {
	return s.ctx.scheduler.Defer(s.name, delay, fn)
}

// Debounce schedules fn after a quiet period, collapsing earlier pending
// runs under the same key.
func (s *PluginScope) Debounce(key string, quiet time.Duration, fn func()) *TaskHandle {
	return s.ctx.scheduler.Debounce(s.name, key, quiet, fn)
}
