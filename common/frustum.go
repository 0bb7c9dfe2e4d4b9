package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Vec4 returns the plane as the 4-component equation (a, b, c, d) used by the clipping uniforms.
func (p Plane) Vec4() mgl32.Vec4 {
	return p.Normal.Vec4(p.Distance)
}

// SignedDistance returns the signed distance of point q from the plane (positive on the normal side).
func (p Plane) SignedDistance(q mgl32.Vec3) float32 {
	return p.Normal.Dot(q) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix whose clip-space
// depth range is [0, 1] (see PerspectiveZO and OrthographicZO).
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined Projection * View matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	row0 := viewProj.Row(0)
	row1 := viewProj.Row(1)
	row2 := viewProj.Row(2)
	row3 := viewProj.Row(3)

	set := func(i int, v mgl32.Vec4) {
		f.Planes[i] = Plane{Normal: v.Vec3(), Distance: v.W()}
	}
	set(FrustumLeft, row3.Add(row0))
	set(FrustumRight, row3.Sub(row0))
	set(FrustumBottom, row3.Add(row1))
	set(FrustumTop, row3.Sub(row1))
	// [0, 1] depth: the near plane is row2 alone rather than row3 + row2.
	set(FrustumNear, row2)
	set(FrustumFar, row3.Sub(row2))

	for i := range f.Planes {
		f.normalizePlane(i)
	}
	return f
}

// IntersectsRegion reports whether any part of the axis-aligned region lies inside the frustum.
// Uses the positive-vertex test, so it can report false positives near frustum corners but never
// rejects a visible region.
//
// Parameters:
//   - r: the world-space region to test
//
// Returns:
//   - bool: false only if the region is entirely outside at least one plane
func (f Frustum) IntersectsRegion(r Region) bool {
	for _, p := range f.Planes {
		var positive mgl32.Vec3
		for axis := range 3 {
			if p.Normal[axis] >= 0 {
				positive[axis] = r.Max[axis]
			} else {
				positive[axis] = r.Min[axis]
			}
		}
		if p.SignedDistance(positive) < 0 {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := math32.Sqrt(p.Normal.Dot(p.Normal))
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
