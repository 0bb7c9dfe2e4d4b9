// Package picking resolves the product under a screen coordinate from a colour-coded render pass.
package picking

import (
	"encoding/binary"
	"math"
)

// NoHit is returned for background pixels.
const NoHit = -1

// MaxProductID is the largest product ID that can be encoded. The value 2^32-1 is unavailable
// because the encoded colour zero is reserved for background.
const MaxProductID = math.MaxUint32 - 1

// EncodeID packs productID + 1 little-endian into an RGBA texel, so that the cleared colour
// (0, 0, 0, 0) stays reserved for "no hit".
//
// Parameters:
//   - productID: the product identifier in [0, MaxProductID]
//
// Returns:
//   - [4]uint8: the RGBA colour
//   - bool: false if the ID is outside the encodable range
func EncodeID(productID int) ([4]uint8, bool) {
	if productID < 0 || uint64(productID) > MaxProductID {
		return [4]uint8{}, false
	}
	var out [4]uint8
	binary.LittleEndian.PutUint32(out[:], uint32(productID)+1)
	return out, true
}

// DecodeID reverses EncodeID.
//
// Parameters:
//   - c: the RGBA texel read back from the picking target
//
// Returns:
//   - int: the product ID, or NoHit for the cleared colour
func DecodeID(c [4]uint8) int {
	v := binary.LittleEndian.Uint32(c[:])
	if v == 0 {
		return NoHit
	}
	return int(v - 1)
}
