package state

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// Snapshot is the serialisable visual state of one model: the state and style of every product
// that differs from the defaults, plus the definitions of every style those products reference.
type Snapshot struct {
	Products []ProductVisual   `json:"products" yaml:"products"`
	Styles   []StyleDefinition `json:"styles" yaml:"styles"`
}

// ProductVisual is one product entry of a Snapshot.
type ProductVisual struct {
	ID    int   `json:"id" yaml:"id"`
	State State `json:"state" yaml:"state"`
	Style Style `json:"style" yaml:"style"`
}

// StyleDefinition is one style slot captured in a Snapshot.
type StyleDefinition struct {
	Index  int      `json:"index" yaml:"index"`
	Colour [4]uint8 `json:"colour" yaml:"colour"`
}

func (t *table) ModelState(modelID int) (Snapshot, bool) {
	m, ok := t.models[modelID]
	if !ok {
		return Snapshot{}, false
	}

	var snap Snapshot
	referenced := make(map[Style]struct{})
	for row, id := range m.ids {
		s, st := m.states[row], m.styles[row]
		if s == Undefined && st == NoStyle {
			continue
		}
		snap.Products = append(snap.Products, ProductVisual{ID: id, State: s, Style: st})
		if st != NoStyle {
			referenced[st] = struct{}{}
		}
	}

	for st := range referenced {
		if colour, ok := t.StyleColour(int(st)); ok {
			snap.Styles = append(snap.Styles, StyleDefinition{Index: int(st), Colour: colour})
		}
	}
	slices.SortFunc(snap.Styles, func(a, b StyleDefinition) int { return a.Index - b.Index })
	return snap, true
}

func (t *table) RestoreModelState(modelID int, snap Snapshot) error {
	m, ok := t.models[modelID]
	if !ok {
		return fmt.Errorf("restore state of model %d: %w", modelID, common.ErrReference)
	}

	for _, p := range snap.Products {
		if !p.State.Valid() {
			return fmt.Errorf("restore product %d: invalid state 0x%02X: %w", p.ID, uint8(p.State), common.ErrRange)
		}
		if !p.Style.Valid() {
			return fmt.Errorf("restore product %d: invalid style %d: %w", p.ID, p.Style, common.ErrRange)
		}
	}
	for _, d := range snap.Styles {
		if d.Index < 0 || d.Index >= MaxStyles {
			return fmt.Errorf("restore style %d: %w", d.Index, common.ErrRange)
		}
	}

	for _, d := range snap.Styles {
		t.styles[d.Index] = d.Colour
		t.define(d.Index)
	}
	for row := range m.states {
		m.states[row] = Undefined
		m.styles[row] = NoStyle
	}
	for _, p := range snap.Products {
		row, ok := m.rows[p.ID]
		if !ok {
			continue
		}
		m.states[row] = p.State
		if p.Style == Unstyled {
			m.styles[row] = NoStyle
		} else {
			m.styles[row] = p.Style
		}
	}
	m.dirty = true
	t.revision++
	return nil
}
