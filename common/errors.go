package common

import "errors"

var (
	// ErrConfiguration reports an invalid rendering target or context at construction time.
	ErrConfiguration = errors.New("configuration error")

	// ErrCapability reports a missing GPU feature or limit.
	ErrCapability = errors.New("capability error")

	// ErrRange reports a style index or colour outside its allowed range.
	ErrRange = errors.New("range error")

	// ErrReference reports an operation on a product or model that does not exist.
	ErrReference = errors.New("reference error")

	// ErrLoad reports a malformed or unreachable geometry source.
	ErrLoad = errors.New("load error")

	// ErrReleased reports use of a geometry handle after its GPU resources were released.
	ErrReleased = errors.New("handle released")
)
