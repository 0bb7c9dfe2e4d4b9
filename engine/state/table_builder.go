package state

import (
	"log"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// TableBuilderOption is a functional option applied to a table during construction via NewTable.
type TableBuilderOption func(*table)

// WithSpaceType sets the product type treated as a space by ResetStates(true).
//
// Parameters:
//   - t: the space product type
//
// Returns:
//   - TableBuilderOption: a function that sets the space type
func WithSpaceType(t common.ProductType) TableBuilderOption {
	return func(tb *table) {
		tb.spaceType = t
	}
}

// WithStyle pre-defines a style slot. Invalid definitions are logged and skipped.
//
// Parameters:
//   - index: the style slot in [0, MaxStyles)
//   - colour: the RGBA colour, each channel in [0, 255]
//
// Returns:
//   - TableBuilderOption: a function that defines the style
func WithStyle(index int, colour []int) TableBuilderOption {
	return func(tb *table) {
		if err := tb.DefineStyle(index, colour); err != nil {
			log.Printf("[StateTable] skipping style %d: %v", index, err)
		}
	}
}
