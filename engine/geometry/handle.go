package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// handle is the implementation of the Handle interface.
type handle struct {
	modelID   int
	tag       string
	region    common.Region
	triangles int
	products  []ProductInfo
	rows      map[int]int

	resources Resources
	started   bool
	released  bool
}

// Handle owns the GPU resources of one loaded model together with its product map.
// After Release, Resources returns nil and every product lookup fails.
type Handle interface {
	// ModelID returns the session-unique model identifier.
	ModelID() int

	// Tag returns the caller-supplied tag passed at load time.
	Tag() string

	// Region returns the model bounding region.
	Region() common.Region

	// TriangleCount returns the number of triangles in the model.
	TriangleCount() int

	// ProductCount returns the number of products in the model.
	ProductCount() int

	// Products returns the product table in row order.
	//
	// Returns:
	//   - []ProductInfo: the product rows, or nil after Release
	Products() []ProductInfo

	// ProductType returns the type code of a product.
	//
	// Parameters:
	//   - productID: the product identifier
	//
	// Returns:
	//   - common.ProductType: the type, or common.TypeUnknown if the product is not in this model
	ProductType(productID int) common.ProductType

	// ProductRegion returns the bounding region of a product.
	//
	// Parameters:
	//   - productID: the product identifier
	//
	// Returns:
	//   - common.Region: the product region
	//   - bool: false if the product is not in this model
	ProductRegion(productID int) (common.Region, bool)

	// Resources returns the backend GPU objects, or nil once the handle is released.
	Resources() Resources

	// Started reports whether the handle participates in the continuous render loop.
	Started() bool

	// SetStarted toggles the animate flag of the handle.
	SetStarted(started bool)

	// Released reports whether Release has been called.
	Released() bool

	// Release frees all GPU resources of the handle. Calling it again returns common.ErrReleased
	// and has no other effect.
	//
	// Returns:
	//   - error: wraps common.ErrReleased on a repeated call
	Release() error
}

var _ Handle = &handle{}

// NewHandle packs the payload and uploads it through the given uploader. No Handle exists unless
// every GPU allocation succeeded.
//
// Parameters:
//   - modelID: the session-unique model identifier
//   - payload: the parsed geometry feed
//   - uploader: the renderer that allocates GPU resources
//   - options: functional options to configure the handle
//
// Returns:
//   - Handle: the newly created handle
//   - error: wraps common.ErrLoad for an inconsistent payload, or the upload error
func NewHandle(modelID int, payload *Payload, uploader Uploader, options ...HandleBuilderOption) (Handle, error) {
	data, err := Pack(payload)
	if err != nil {
		return nil, err
	}

	res, err := uploader.UploadHandle(data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload model %d: %w", modelID, err)
	}

	h := &handle{
		modelID:   modelID,
		region:    data.Region,
		triangles: data.TriangleCount,
		products:  data.Products,
		rows:      make(map[int]int, len(data.Products)),
		resources: res,
	}
	for row, p := range data.Products {
		h.rows[p.ID] = row
	}
	for _, option := range options {
		option(h)
	}
	return h, nil
}

func (h *handle) ModelID() int {
	return h.modelID
}

func (h *handle) Tag() string {
	return h.tag
}

func (h *handle) Region() common.Region {
	return h.region
}

func (h *handle) TriangleCount() int {
	return h.triangles
}

func (h *handle) ProductCount() int {
	return len(h.products)
}

func (h *handle) Products() []ProductInfo {
	if h.released {
		return nil
	}
	return h.products
}

func (h *handle) ProductType(productID int) common.ProductType {
	if row, ok := h.row(productID); ok {
		return h.products[row].Type
	}
	return common.TypeUnknown
}

func (h *handle) ProductRegion(productID int) (common.Region, bool) {
	if row, ok := h.row(productID); ok {
		return h.products[row].Region, true
	}
	return common.Region{}, false
}

func (h *handle) Resources() Resources {
	if h.released {
		return nil
	}
	return h.resources
}

func (h *handle) Started() bool {
	return h.started && !h.released
}

func (h *handle) SetStarted(started bool) {
	h.started = started
}

func (h *handle) Released() bool {
	return h.released
}

func (h *handle) Release() error {
	if h.released {
		return fmt.Errorf("model %d: %w", h.modelID, common.ErrReleased)
	}
	h.released = true
	h.started = false
	if h.resources != nil {
		h.resources.Release()
		h.resources = nil
	}
	return nil
}

func (h *handle) row(productID int) (int, bool) {
	if h.released {
		return 0, false
	}
	row, ok := h.rows[productID]
	return row, ok
}
