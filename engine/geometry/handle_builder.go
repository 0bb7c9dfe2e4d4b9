package geometry

// HandleBuilderOption is a functional option applied to a handle during construction via NewHandle.
type HandleBuilderOption func(*handle)

// WithTag sets the caller-supplied tag reported with the loaded event.
//
// Parameters:
//   - tag: the tag
//
// Returns:
//   - HandleBuilderOption: a function that sets the tag
func WithTag(tag string) HandleBuilderOption {
	return func(h *handle) {
		h.tag = tag
	}
}

// WithStarted sets the initial animate flag of the handle.
//
// Parameters:
//   - started: true to join the continuous render loop immediately
//
// Returns:
//   - HandleBuilderOption: a function that sets the animate flag
func WithStarted(started bool) HandleBuilderOption {
	return func(h *handle) {
		h.started = started
	}
}
