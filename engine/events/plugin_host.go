package events

import (
	"log"
	"reflect"
	"slices"
)

// Plugin is any comparable value, typically a pointer, implementing zero or more of the capability
// interfaces below. The host discovers capabilities once, when the plugin is added.
type Plugin any

// Initializer is implemented by plugins that need the viewer when they are added.
type Initializer[T any] interface {
	Init(viewer T)
}

// BeforeDrawer is implemented by plugins that run before each drawn frame.
type BeforeDrawer interface {
	OnBeforeDraw()
}

// AfterDrawer is implemented by plugins that run after each drawn frame.
type AfterDrawer interface {
	OnAfterDraw()
}

// BeforePicker is implemented by plugins that run before each picking pass.
type BeforePicker interface {
	OnBeforePick()
}

// AfterPicker is implemented by plugins that observe picking results. productID is -1 for no hit.
type AfterPicker interface {
	OnAfterPick(productID int)
}

// Remover is implemented by plugins that release resources when removed.
type Remover interface {
	OnRemove()
}

// pluginHost is the implementation of the PluginHost interface.
type pluginHost[T any] struct {
	plugins []Plugin

	beforeDraw []BeforeDrawer
	afterDraw  []AfterDrawer
	beforePick []BeforePicker
	afterPick  []AfterPicker
}

// PluginHost keeps plugins in registration order and dispatches lifecycle hooks to the ones that
// implement them. Dispatch lists are rebuilt only when the plugin set changes.
type PluginHost[T any] interface {
	// Add registers a plugin and calls its Init hook, if any, with the owner.
	//
	// Parameters:
	//   - p: the plugin
	//   - owner: the value passed to Init
	//
	// Returns:
	//   - bool: false if the plugin was already registered or is not comparable
	Add(p Plugin, owner T) bool

	// Remove unregisters a plugin and calls its OnRemove hook, if any.
	//
	// Parameters:
	//   - p: the plugin
	//
	// Returns:
	//   - bool: false if the plugin was not registered
	Remove(p Plugin) bool

	// Plugins returns the registered plugins in registration order.
	Plugins() []Plugin

	// BeforeDraw runs every OnBeforeDraw hook.
	BeforeDraw()

	// AfterDraw runs every OnAfterDraw hook.
	AfterDraw()

	// BeforePick runs every OnBeforePick hook.
	BeforePick()

	// AfterPick runs every OnAfterPick hook with the picking result.
	AfterPick(productID int)
}

// NewPluginHost creates an empty PluginHost whose plugins are initialised with a T.
//
// Returns:
//   - PluginHost[T]: the newly created host
func NewPluginHost[T any]() PluginHost[T] {
	return &pluginHost[T]{}
}

func (h *pluginHost[T]) Add(p Plugin, owner T) bool {
	if !isComparable(p) {
		log.Printf("[PluginHost] rejecting plugin of non-comparable type %T", p)
		return false
	}
	if slices.Contains(h.plugins, p) {
		return false
	}
	h.plugins = append(h.plugins, p)
	if i, ok := p.(Initializer[T]); ok {
		guard("Init", func() { i.Init(owner) })
	}
	h.rebuild()
	return true
}

func (h *pluginHost[T]) Remove(p Plugin) bool {
	if !isComparable(p) {
		return false
	}
	i := slices.Index(h.plugins, p)
	if i < 0 {
		return false
	}
	h.plugins = slices.Delete(h.plugins, i, i+1)
	h.rebuild()
	if r, ok := p.(Remover); ok {
		guard("OnRemove", r.OnRemove)
	}
	return true
}

func (h *pluginHost[T]) Plugins() []Plugin {
	return slices.Clone(h.plugins)
}

func (h *pluginHost[T]) BeforeDraw() {
	for _, p := range h.beforeDraw {
		guard("OnBeforeDraw", p.OnBeforeDraw)
	}
}

func (h *pluginHost[T]) AfterDraw() {
	for _, p := range h.afterDraw {
		guard("OnAfterDraw", p.OnAfterDraw)
	}
}

func (h *pluginHost[T]) BeforePick() {
	for _, p := range h.beforePick {
		guard("OnBeforePick", p.OnBeforePick)
	}
}

func (h *pluginHost[T]) AfterPick(productID int) {
	for _, p := range h.afterPick {
		guard("OnAfterPick", func() { p.OnAfterPick(productID) })
	}
}

// rebuild recomputes the per-hook dispatch lists from the plugin list. The lists are always fresh
// slices: a dispatch in progress keeps ranging over the set it started with.
func (h *pluginHost[T]) rebuild() {
	var (
		beforeDraw []BeforeDrawer
		afterDraw  []AfterDrawer
		beforePick []BeforePicker
		afterPick  []AfterPicker
	)
	for _, p := range h.plugins {
		if v, ok := p.(BeforeDrawer); ok {
			beforeDraw = append(beforeDraw, v)
		}
		if v, ok := p.(AfterDrawer); ok {
			afterDraw = append(afterDraw, v)
		}
		if v, ok := p.(BeforePicker); ok {
			beforePick = append(beforePick, v)
		}
		if v, ok := p.(AfterPicker); ok {
			afterPick = append(afterPick, v)
		}
	}
	h.beforeDraw, h.afterDraw, h.beforePick, h.afterPick = beforeDraw, afterDraw, beforePick, afterPick
}

// isComparable reports whether p can be compared with ==. Plugins are identified by equality, so
// values holding slices, maps or funcs cannot be registered.
func isComparable(p Plugin) bool {
	t := reflect.TypeOf(p)
	return t != nil && t.Comparable()
}

func guard(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PluginHost] %s panicked: %v", hook, r)
		}
	}()
	fn()
}
