package state

import "github.com/Carmen-Shannon/oxy-bim/common"

// Target selects the products affected by a state or style mutation.
// Construct one with Product, Products or Type.
type Target struct {
	ids         []int
	productType common.ProductType
	byType      bool
}

// Product targets a single product ID in every loaded model that contains it.
func Product(id int) Target {
	return Target{ids: []int{id}}
}

// Products targets a list of product IDs in every loaded model that contains them.
func Products(ids ...int) Target {
	return Target{ids: ids}
}

// Type targets every product of the given type across all loaded models.
func Type(t common.ProductType) Target {
	return Target{productType: t, byType: true}
}

// rows returns the table rows of m selected by the target.
func (t Target) rows(m *modelTable) []int {
	var out []int
	if t.byType {
		for row, pt := range m.types {
			if pt == t.productType {
				out = append(out, row)
			}
		}
		return out
	}
	for _, id := range t.ids {
		if row, ok := m.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out
}
