package picking

// PickerBuilderOption is a functional option applied to a picker during construction via NewPicker.
type PickerBuilderOption func(*picker)

// WithHooks sets callbacks run around every picking pass.
//
// Parameters:
//   - before: called before the pass is rendered, may be nil
//   - after: called with the decoded result, may be nil
//
// Returns:
//   - PickerBuilderOption: a function that sets the hooks
func WithHooks(before func(), after func(productID int)) PickerBuilderOption {
	return func(p *picker) {
		p.before = before
		p.after = after
	}
}
