package geometry

// Resources is the backend-specific set of GPU objects allocated for one Handle.
type Resources interface {
	// Release frees every GPU object. Called exactly once by Handle.Release.
	Release()
}

// Uploader allocates GPU resources for packed geometry. Implemented by the renderer.
type Uploader interface {
	// UploadHandle allocates and fills every buffer and texture for one model.
	// Allocation is all-or-nothing: on error, nothing stays allocated.
	//
	// Parameters:
	//   - data: the packed model
	//
	// Returns:
	//   - Resources: the allocated GPU objects
	//   - error: an error if any allocation failed
	UploadHandle(data *PackedData) (Resources, error)
}
