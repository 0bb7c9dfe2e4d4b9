package state

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// ProductEntry describes one product row registered with the table for a model.
type ProductEntry struct {
	ID   int
	Type common.ProductType
}

// modelTable holds the visual state of one model's products. Row order matches the product
// index baked into the model's vertex stream.
type modelTable struct {
	rows   map[int]int
	ids    []int
	types  []common.ProductType
	states []State
	styles []Style

	dirty   bool
	texture common.TextureStagingData
}

// table is the implementation of the Table interface.
// It is confined to the frame goroutine and does no locking.
type table struct {
	models map[int]*modelTable
	order  []int

	styles       [MaxStyles][4]uint8
	defined      [MaxStyles]bool
	styleDirty   bool
	styleTexture common.TextureStagingData

	spaceType common.ProductType
	revision  uint64
}

// Table is the per-product visual state and override-style table (StateStyleTable).
//
// Each loaded model registers its products in row order. Mutations mark the affected models dirty;
// the lookup textures are regenerated in full, at most once per frame, when the renderer asks for them.
// State and style are independent channels: a hidden product stays hidden regardless of its style.
type Table interface {
	// AddModel registers the products of a newly loaded model. All products start Undefined with NoStyle.
	//
	// Parameters:
	//   - modelID: the model identifier
	//   - products: the product rows, in the order used by the model's product index
	//
	// Returns:
	//   - error: wraps common.ErrConfiguration if the model is already registered
	AddModel(modelID int, products []ProductEntry) error

	// RemoveModel forgets a model and its states. Other models are unaffected.
	//
	// Parameters:
	//   - modelID: the model identifier
	//
	// Returns:
	//   - bool: false if the model was not registered
	RemoveModel(modelID int) bool

	// HasModel reports whether the model is registered.
	HasModel(modelID int) bool

	// SetState assigns a state to the targeted products across all registered models.
	//
	// Parameters:
	//   - s: the state to assign
	//   - target: the products to change
	//
	// Returns:
	//   - error: wraps common.ErrRange if s is not a defined state; nothing is changed in that case
	SetState(s State, target Target) error

	// ProductState returns the state of the first registered model containing the product.
	//
	// Parameters:
	//   - productID: the product identifier
	//
	// Returns:
	//   - State: the product state, or Undefined if the product is unknown or was never set
	ProductState(productID int) State

	// SetStyle assigns an override style to the targeted products across all registered models.
	// Passing NoStyle or Unstyled removes the override. An index that has no definition yet is kept
	// but drawn with the default style until DefineStyle fills the slot.
	//
	// Parameters:
	//   - style: the style index (0 to MaxStyles-1), NoStyle or Unstyled
	//   - target: the products to change
	//
	// Returns:
	//   - error: wraps common.ErrRange if the style index is out of range; nothing is changed in that case
	SetStyle(style Style, target Target) error

	// ProductStyle returns the override style of the first registered model containing the product.
	//
	// Parameters:
	//   - productID: the product identifier
	//
	// Returns:
	//   - Style: the style index, or NoStyle if the product is unknown or was never styled
	ProductStyle(productID int) Style

	// ProductType returns the type of the first registered model containing the product.
	//
	// Returns:
	//   - common.ProductType: the type, or common.TypeUnknown if the product does not exist
	ProductType(productID int) common.ProductType

	// ResetStates sets every product of every model back to Undefined. When hideSpaces is true,
	// products of the space type are set to Hidden instead.
	//
	// Parameters:
	//   - hideSpaces: whether space products end up Hidden
	ResetStates(hideSpaces bool)

	// ResetStyles removes every style override. Style definitions are kept.
	ResetStyles()

	// DefineStyle defines or redefines the RGBA colour of a style slot.
	//
	// Parameters:
	//   - index: the style slot in [0, MaxStyles)
	//   - colour: exactly four channels, each in [0, 255]
	//
	// Returns:
	//   - error: wraps common.ErrRange for a bad index, arity or channel value; nothing is changed in that case
	DefineStyle(index int, colour []int) error

	// StyleColour returns the colour of a defined style slot.
	//
	// Returns:
	//   - [4]uint8: the RGBA colour
	//   - bool: false if the slot was never defined
	StyleColour(index int) ([4]uint8, bool)

	// ModelState captures the visual state of every product of one model plus the style
	// definitions those products reference.
	//
	// Parameters:
	//   - modelID: the model identifier
	//
	// Returns:
	//   - Snapshot: the captured state
	//   - bool: false if the model is not registered
	ModelState(modelID int) (Snapshot, bool)

	// RestoreModelState replaces the visual state of one model with a previously captured snapshot.
	// Products missing from the snapshot return to Undefined/NoStyle; the referenced style definitions
	// are redefined. Nothing is changed if the snapshot fails validation.
	//
	// Parameters:
	//   - modelID: the model identifier
	//   - snap: the snapshot produced by ModelState
	//
	// Returns:
	//   - error: wraps common.ErrReference for an unknown model or common.ErrRange for invalid entries
	RestoreModelState(modelID int, snap Snapshot) error

	// Revision returns a counter that increases on every mutation. Used for frame change detection.
	Revision() uint64

	// Dirty reports whether the model's lookup texture is stale.
	Dirty(modelID int) bool

	// LookupTexture returns the model's state/style lookup texture, rebuilding it from the full table
	// if it is dirty. Texel i holds (state, style, 0, 0) of product row i; styles whose slot is not
	// defined are encoded as NoStyle.
	//
	// Parameters:
	//   - modelID: the model identifier
	//
	// Returns:
	//   - common.TextureStagingData: the lookup texture
	//   - bool: true if the texture was rebuilt by this call
	LookupTexture(modelID int) (common.TextureStagingData, bool)

	// StyleTexture returns the shared style colour texture, rebuilding it if any definition changed.
	// Texel i holds the colour of style slot i.
	//
	// Returns:
	//   - common.TextureStagingData: the style texture
	//   - bool: true if the texture was rebuilt by this call
	StyleTexture() (common.TextureStagingData, bool)
}

var _ Table = &table{}

// NewTable creates an empty state/style table.
//
// Parameters:
//   - options: functional options to configure the table
//
// Returns:
//   - Table: the newly created table
func NewTable(options ...TableBuilderOption) Table {
	t := &table{
		models:       make(map[int]*modelTable),
		spaceType:    common.TypeSpace,
		styleDirty:   true,
		styleTexture: common.NewLookupTexture(256, 1, common.TexelFormatRGBA8Unorm),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *table) AddModel(modelID int, products []ProductEntry) error {
	if _, exists := t.models[modelID]; exists {
		return fmt.Errorf("model %d already registered: %w", modelID, common.ErrConfiguration)
	}

	m := &modelTable{
		rows:   make(map[int]int, len(products)),
		ids:    make([]int, len(products)),
		types:  make([]common.ProductType, len(products)),
		states: make([]State, len(products)),
		styles: make([]Style, len(products)),
		dirty:  true,
	}
	for row, p := range products {
		m.rows[p.ID] = row
		m.ids[row] = p.ID
		m.types[row] = p.Type
		m.states[row] = Undefined
		m.styles[row] = NoStyle
	}
	m.texture = common.NewLookupTexture(len(products), 1, common.TexelFormatRGBA8Uint)

	t.models[modelID] = m
	t.order = append(t.order, modelID)
	t.revision++
	return nil
}

func (t *table) RemoveModel(modelID int) bool {
	if _, exists := t.models[modelID]; !exists {
		return false
	}
	delete(t.models, modelID)
	t.order = slices.DeleteFunc(t.order, func(id int) bool { return id == modelID })
	t.revision++
	return true
}

func (t *table) HasModel(modelID int) bool {
	_, ok := t.models[modelID]
	return ok
}

func (t *table) SetState(s State, target Target) error {
	if !s.Valid() {
		return fmt.Errorf("invalid state 0x%02X: %w", uint8(s), common.ErrRange)
	}
	t.apply(target, func(m *modelTable, row int) {
		m.states[row] = s
	})
	return nil
}

func (t *table) SetStyle(style Style, target Target) error {
	if !style.Valid() {
		return fmt.Errorf("style index %d outside [0, %d): %w", style, MaxStyles, common.ErrRange)
	}
	if style == Unstyled {
		style = NoStyle
	}
	t.apply(target, func(m *modelTable, row int) {
		m.styles[row] = style
	})
	return nil
}

func (t *table) ProductState(productID int) State {
	if m, row, ok := t.find(productID); ok {
		return m.states[row]
	}
	return Undefined
}

func (t *table) ProductStyle(productID int) Style {
	if m, row, ok := t.find(productID); ok {
		return m.styles[row]
	}
	return NoStyle
}

func (t *table) ProductType(productID int) common.ProductType {
	if m, row, ok := t.find(productID); ok {
		return m.types[row]
	}
	return common.TypeUnknown
}

func (t *table) ResetStates(hideSpaces bool) {
	for _, id := range t.order {
		m := t.models[id]
		for row := range m.states {
			if hideSpaces && m.types[row] == t.spaceType {
				m.states[row] = Hidden
			} else {
				m.states[row] = Undefined
			}
		}
		m.dirty = true
	}
	t.revision++
}

func (t *table) ResetStyles() {
	for _, id := range t.order {
		m := t.models[id]
		for row := range m.styles {
			m.styles[row] = NoStyle
		}
		m.dirty = true
	}
	t.revision++
}

func (t *table) DefineStyle(index int, colour []int) error {
	if index < 0 || index >= MaxStyles {
		return fmt.Errorf("style index %d outside [0, %d): %w", index, MaxStyles, common.ErrRange)
	}
	if len(colour) != 4 {
		return fmt.Errorf("style colour needs 4 channels, got %d: %w", len(colour), common.ErrRange)
	}
	var rgba [4]uint8
	for i, c := range colour {
		if c < 0 || c > 255 {
			return fmt.Errorf("style colour channel %d value %d outside [0, 255]: %w", i, c, common.ErrRange)
		}
		rgba[i] = uint8(c)
	}

	t.styles[index] = rgba
	t.define(index)
	t.revision++
	return nil
}

// define marks a style slot as defined. The first definition of a slot dirties every model, since
// products already pointing at it were encoded as NoStyle.
func (t *table) define(index int) {
	if !t.defined[index] {
		t.defined[index] = true
		for _, m := range t.models {
			m.dirty = true
		}
	}
	t.styleDirty = true
}

// encodedStyle is the style byte written to the lookup texture.
func (t *table) encodedStyle(s Style) Style {
	if int(s) < MaxStyles && !t.defined[s] {
		return NoStyle
	}
	return s
}

func (t *table) StyleColour(index int) ([4]uint8, bool) {
	if index < 0 || index >= MaxStyles || !t.defined[index] {
		return [4]uint8{}, false
	}
	return t.styles[index], true
}

func (t *table) Revision() uint64 {
	return t.revision
}

func (t *table) Dirty(modelID int) bool {
	m, ok := t.models[modelID]
	return ok && m.dirty
}

func (t *table) LookupTexture(modelID int) (common.TextureStagingData, bool) {
	m, ok := t.models[modelID]
	if !ok {
		return common.TextureStagingData{}, false
	}
	if !m.dirty {
		return m.texture, false
	}
	for row := range m.states {
		m.texture.SetTexelBytes(row, [4]uint8{uint8(m.states[row]), uint8(t.encodedStyle(m.styles[row])), 0, 0})
	}
	m.dirty = false
	return m.texture, true
}

func (t *table) StyleTexture() (common.TextureStagingData, bool) {
	if !t.styleDirty {
		return t.styleTexture, false
	}
	for i := range MaxStyles {
		t.styleTexture.SetTexelBytes(i, t.styles[i])
	}
	t.styleDirty = false
	return t.styleTexture, true
}

// find returns the first registered model, in registration order, that contains the product.
func (t *table) find(productID int) (*modelTable, int, bool) {
	for _, id := range t.order {
		m := t.models[id]
		if row, ok := m.rows[productID]; ok {
			return m, row, true
		}
	}
	return nil, 0, false
}

// apply runs fn on every targeted row of every registered model and marks touched models dirty.
func (t *table) apply(target Target, fn func(m *modelTable, row int)) {
	for _, id := range t.order {
		m := t.models[id]
		rows := target.rows(m)
		if len(rows) == 0 {
			continue
		}
		for _, row := range rows {
			fn(m, row)
		}
		m.dirty = true
	}
	t.revision++
}
