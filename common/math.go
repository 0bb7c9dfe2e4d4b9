package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PerspectiveZO creates a right-handed perspective projection matrix that maps view-space depth
// into the WebGPU clip-space range [0, 1]. mgl32.Perspective targets the OpenGL [-1, 1] range,
// so it cannot be used directly with a Depth24Plus attachment cleared to 1.0.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// OrthographicZO creates a right-handed orthographic projection matrix with WebGPU [0, 1] depth.
//
// Parameters:
//   - left, right, bottom, top: view-volume extents in view space
//   - near, far: clipping plane distances along the view direction
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthographicZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	out := mgl32.Ident4()
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
	return out
}

// RowMajorToMat4 converts 16 row-major floats, as delivered by the geometry feed, to a column-major matrix.
//
// Parameters:
//   - m: the row-major matrix entries (must be at least 16 elements)
//
// Returns:
//   - mgl32.Mat4: the column-major matrix
func RowMajorToMat4(m []float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for row := range 4 {
		for col := range 4 {
			out[col*4+row] = m[row*4+col]
		}
	}
	return out
}

// TransformPoint multiplies a point by a 4x4 matrix and performs the perspective divide.
//
// Parameters:
//   - m: the transform matrix
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
//   - float32: the clip-space w component before the divide
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec3, float32) {
	v := m.Mul4x1(p.Vec4(1))
	if v.W() == 0 {
		return v.Vec3(), 0
	}
	return v.Vec3().Mul(1 / v.W()), v.W()
}

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
