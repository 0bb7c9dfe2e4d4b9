package state

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) Table {
	t.Helper()
	tb := NewTable()
	require.NoError(t, tb.AddModel(1, []ProductEntry{
		{ID: 10, Type: common.TypeWall},
		{ID: 11, Type: common.TypeWall},
		{ID: 12, Type: common.TypeSpace},
		{ID: 13, Type: common.TypeDoor},
	}))
	require.NoError(t, tb.AddModel(2, []ProductEntry{
		{ID: 20, Type: common.TypeSlab},
		{ID: 12, Type: common.TypeSpace},
	}))
	return tb
}

func TestDefaults(t *testing.T) {
	tb := newTestTable(t)

	assert.Equal(t, Undefined, tb.ProductState(10))
	assert.Equal(t, NoStyle, tb.ProductStyle(10))
	assert.Equal(t, Undefined, tb.ProductState(999))
	assert.Equal(t, NoStyle, tb.ProductStyle(999))
	assert.Equal(t, common.TypeUnknown, tb.ProductType(999))
	assert.Equal(t, common.TypeDoor, tb.ProductType(13))
}

func TestAddModelDuplicate(t *testing.T) {
	tb := newTestTable(t)
	err := tb.AddModel(1, nil)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestSetStateAcrossModels(t *testing.T) {
	tb := newTestTable(t)
	before := tb.Revision()

	require.NoError(t, tb.SetState(Hidden, Product(12)))
	assert.Equal(t, Hidden, tb.ProductState(12))
	assert.Greater(t, tb.Revision(), before)
	assert.True(t, tb.Dirty(1))
	assert.True(t, tb.Dirty(2))

	require.NoError(t, tb.SetState(Highlighted, Type(common.TypeWall)))
	assert.Equal(t, Highlighted, tb.ProductState(10))
	assert.Equal(t, Highlighted, tb.ProductState(11))
	assert.Equal(t, Undefined, tb.ProductState(13))
}

func TestSetStateRejectsInvalid(t *testing.T) {
	tb := newTestTable(t)
	rev := tb.Revision()

	err := tb.SetState(State(3), Product(10))
	assert.ErrorIs(t, err, common.ErrRange)
	assert.Equal(t, rev, tb.Revision())
	assert.Equal(t, Undefined, tb.ProductState(10))
}

func TestStateAndStyleAreIndependent(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.DefineStyle(5, []int{255, 0, 0, 255}))

	require.NoError(t, tb.SetState(Hidden, Product(10)))
	require.NoError(t, tb.SetStyle(5, Product(10)))
	assert.Equal(t, Hidden, tb.ProductState(10))
	assert.Equal(t, Style(5), tb.ProductStyle(10))

	require.NoError(t, tb.SetStyle(Unstyled, Product(10)))
	assert.Equal(t, NoStyle, tb.ProductStyle(10))
	assert.Equal(t, Hidden, tb.ProductState(10))
}

func TestSetStyleRejectsOutOfRange(t *testing.T) {
	tb := newTestTable(t)
	err := tb.SetStyle(Style(MaxStyles), Product(10))
	assert.ErrorIs(t, err, common.ErrRange)
	assert.Equal(t, NoStyle, tb.ProductStyle(10))
}

func TestResetStates(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.SetState(Highlighted, Products(10, 13)))

	tb.ResetStates(true)
	assert.Equal(t, Undefined, tb.ProductState(10))
	assert.Equal(t, Undefined, tb.ProductState(13))
	assert.Equal(t, Hidden, tb.ProductState(12))

	tb.ResetStates(false)
	assert.Equal(t, Undefined, tb.ProductState(12))
}

func TestResetStylesKeepsDefinitions(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.DefineStyle(0, []int{1, 2, 3, 4}))
	require.NoError(t, tb.SetStyle(0, Products(10, 20)))

	tb.ResetStyles()
	assert.Equal(t, NoStyle, tb.ProductStyle(10))
	assert.Equal(t, NoStyle, tb.ProductStyle(20))
	colour, ok := tb.StyleColour(0)
	assert.True(t, ok)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, colour)
}

func TestDefineStyleValidation(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		colour []int
	}{
		{"negative index", -1, []int{0, 0, 0, 0}},
		{"index too large", MaxStyles, []int{0, 0, 0, 0}},
		{"too few channels", 3, []int{0, 0, 0}},
		{"too many channels", 3, []int{0, 0, 0, 0, 0}},
		{"channel above 255", 3, []int{0, 256, 0, 0}},
		{"negative channel", 3, []int{0, 0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := NewTable()
			err := tb.DefineStyle(tt.index, tt.colour)
			assert.ErrorIs(t, err, common.ErrRange)
			_, ok := tb.StyleColour(3)
			assert.False(t, ok)
		})
	}

	tb := NewTable()
	require.NoError(t, tb.DefineStyle(MaxStyles-1, []int{0, 255, 128, 64}))
	colour, ok := tb.StyleColour(MaxStyles - 1)
	assert.True(t, ok)
	assert.Equal(t, [4]uint8{0, 255, 128, 64}, colour)
}

func TestLookupTextureRebuild(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.DefineStyle(7, []int{9, 9, 9, 255}))
	require.NoError(t, tb.SetState(Hidden, Product(11)))
	require.NoError(t, tb.SetStyle(7, Product(13)))

	tex, rebuilt := tb.LookupTexture(1)
	require.True(t, rebuilt)
	assert.Equal(t, common.TexelFormatRGBA8Uint, tex.Format)
	assert.Equal(t, [4]uint8{uint8(Undefined), uint8(NoStyle), 0, 0}, tex.TexelBytes(0))
	assert.Equal(t, [4]uint8{uint8(Hidden), uint8(NoStyle), 0, 0}, tex.TexelBytes(1))
	assert.Equal(t, [4]uint8{uint8(Undefined), 7, 0, 0}, tex.TexelBytes(3))
	assert.False(t, tb.Dirty(1))

	_, rebuilt = tb.LookupTexture(1)
	assert.False(t, rebuilt)

	styles, changed := tb.StyleTexture()
	assert.True(t, changed)
	assert.Equal(t, [4]uint8{9, 9, 9, 255}, styles.TexelBytes(7))
	_, changed = tb.StyleTexture()
	assert.False(t, changed)
}

func TestRemoveModelLeavesOthers(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.SetState(Highlighted, Product(12)))

	assert.True(t, tb.RemoveModel(1))
	assert.False(t, tb.RemoveModel(1))
	assert.False(t, tb.HasModel(1))
	assert.Equal(t, Undefined, tb.ProductState(10))
	assert.Equal(t, Highlighted, tb.ProductState(12))
	assert.Equal(t, common.TypeSlab, tb.ProductType(20))
}

func TestSnapshotRoundTrip(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.DefineStyle(4, []int{10, 20, 30, 40}))
	require.NoError(t, tb.SetState(Hidden, Product(10)))
	require.NoError(t, tb.SetState(XRayVisible, Product(13)))
	require.NoError(t, tb.SetStyle(4, Product(13)))

	snap, ok := tb.ModelState(1)
	require.True(t, ok)
	assert.Len(t, snap.Products, 2)
	require.Len(t, snap.Styles, 1)
	assert.Equal(t, StyleDefinition{Index: 4, Colour: [4]uint8{10, 20, 30, 40}}, snap.Styles[0])

	tb.ResetStates(false)
	tb.ResetStyles()
	require.NoError(t, tb.SetState(Highlighted, Product(11)))

	fresh := NewTable()
	require.NoError(t, fresh.AddModel(1, []ProductEntry{{ID: 10}, {ID: 11}, {ID: 12}, {ID: 13}}))
	require.NoError(t, fresh.RestoreModelState(1, snap))
	require.NoError(t, tb.RestoreModelState(1, snap))

	for _, restored := range []Table{tb, fresh} {
		assert.Equal(t, Hidden, restored.ProductState(10))
		assert.Equal(t, Undefined, restored.ProductState(11))
		assert.Equal(t, XRayVisible, restored.ProductState(13))
		assert.Equal(t, Style(4), restored.ProductStyle(13))
		colour, ok := restored.StyleColour(4)
		assert.True(t, ok)
		assert.Equal(t, [4]uint8{10, 20, 30, 40}, colour)
	}
}

func TestRestoreModelStateErrors(t *testing.T) {
	tb := newTestTable(t)

	err := tb.RestoreModelState(42, Snapshot{})
	assert.ErrorIs(t, err, common.ErrReference)

	require.NoError(t, tb.SetState(Hidden, Product(10)))
	err = tb.RestoreModelState(1, Snapshot{Products: []ProductVisual{{ID: 11, State: State(1), Style: NoStyle}}})
	assert.ErrorIs(t, err, common.ErrRange)
	assert.Equal(t, Hidden, tb.ProductState(10))

	err = tb.RestoreModelState(1, Snapshot{Styles: []StyleDefinition{{Index: MaxStyles}}})
	assert.ErrorIs(t, err, common.ErrRange)
}

func TestWithStyleOption(t *testing.T) {
	tb := NewTable(WithStyle(2, []int{1, 1, 1, 1}), WithStyle(300, []int{1, 1, 1, 1}), WithSpaceType(common.TypeCovering))
	_, ok := tb.StyleColour(2)
	assert.True(t, ok)

	require.NoError(t, tb.AddModel(1, []ProductEntry{{ID: 1, Type: common.TypeCovering}, {ID: 2, Type: common.TypeSpace}}))
	tb.ResetStates(true)
	assert.Equal(t, Hidden, tb.ProductState(1))
	assert.Equal(t, Undefined, tb.ProductState(2))
}

func TestUndefinedStyleSlotEncodesAsNoStyle(t *testing.T) {
	tb := newTestTable(t)
	require.NoError(t, tb.SetStyle(7, Product(13)))
	assert.Equal(t, Style(7), tb.ProductStyle(13), "the assignment itself is kept")

	tex, rebuilt := tb.LookupTexture(1)
	require.True(t, rebuilt)
	assert.Equal(t, [4]uint8{uint8(Undefined), uint8(NoStyle), 0, 0}, tex.TexelBytes(3))

	require.NoError(t, tb.DefineStyle(7, []int{9, 9, 9, 255}))
	assert.True(t, tb.Dirty(1), "defining a slot dirties models that reference it")
	tex, rebuilt = tb.LookupTexture(1)
	require.True(t, rebuilt)
	assert.Equal(t, [4]uint8{uint8(Undefined), 7, 0, 0}, tex.TexelBytes(3))

	require.NoError(t, tb.DefineStyle(7, []int{1, 1, 1, 255}))
	assert.False(t, tb.Dirty(1), "redefining only changes the style texture")
}
