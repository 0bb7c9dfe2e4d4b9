package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
)

// loaderBackend turns a model stream into a geometry payload. Concrete implementations handle
// format-specific details.
type loaderBackend interface {
	// Decode parses and validates one complete model.
	//
	// Parameters:
	//   - r: the model stream
	//
	// Returns:
	//   - *geometry.Payload: the parsed payload
	//   - error: wraps common.ErrLoad if the stream is malformed
	Decode(r io.Reader) (*geometry.Payload, error)
}

// feedLoaderBackend reads the binary geometry feed.
type feedLoaderBackend struct{}

var _ loaderBackend = feedLoaderBackend{}

func (feedLoaderBackend) Decode(r io.Reader) (*geometry.Payload, error) {
	return Decode(r)
}
