package common

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Region is an axis-aligned bounding region in the world coordinate system.
// Use EmptyRegion, not the zero value, to start a union accumulation.
type Region struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyRegion returns an inverted region that any Extend or Union call will replace.
func EmptyRegion() Region {
	return Region{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// NewRegion builds a region from six floats ordered min xyz then max xyz.
func NewRegion(minX, minY, minZ, maxX, maxY, maxZ float32) Region {
	return Region{
		Min: mgl32.Vec3{minX, minY, minZ},
		Max: mgl32.Vec3{maxX, maxY, maxZ},
	}
}

// Valid reports whether Min <= Max on every axis.
func (r Region) Valid() bool {
	return r.Min[0] <= r.Max[0] && r.Min[1] <= r.Max[1] && r.Min[2] <= r.Max[2]
}

// Centroid returns the centre point of the region.
func (r Region) Centroid() mgl32.Vec3 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Size returns the extent of the region on each axis.
func (r Region) Size() mgl32.Vec3 {
	return r.Max.Sub(r.Min)
}

// Radius returns the radius of the sphere that encloses the region (half its diagonal).
func (r Region) Radius() float32 {
	return r.Size().Len() / 2
}

// Extend grows the region to include point p.
//
// Parameters:
//   - p: the point to include
//
// Returns:
//   - Region: the grown region
func (r Region) Extend(p mgl32.Vec3) Region {
	for axis := range 3 {
		r.Min[axis] = math32.Min(r.Min[axis], p[axis])
		r.Max[axis] = math32.Max(r.Max[axis], p[axis])
	}
	return r
}

// Union returns the smallest region containing both r and o. Invalid operands are ignored.
//
// Parameters:
//   - o: the region to merge
//
// Returns:
//   - Region: the merged region
func (r Region) Union(o Region) Region {
	if !o.Valid() {
		return r
	}
	if !r.Valid() {
		return o
	}
	return r.Extend(o.Min).Extend(o.Max)
}

// Corners returns the eight corners of the region.
func (r Region) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range 8 {
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				out[i][axis] = r.Max[axis]
			} else {
				out[i][axis] = r.Min[axis]
			}
		}
	}
	return out
}

// Transform returns the axis-aligned region enclosing r after transforming it by m.
func (r Region) Transform(m mgl32.Mat4) Region {
	out := EmptyRegion()
	for _, c := range r.Corners() {
		p, _ := TransformPoint(m, c)
		out = out.Extend(p)
	}
	return out
}
