package vecmath

import "math"

// AABB is an axis-aligned bounding box, used both for the fixed mesh
// extraction bounds and for the dirty region a skeleton/mould update
// invalidates.
type AABB struct {
	Min, Max Vec3
}

// Extent returns Max-Min componentwise.
func (b AABB) Extent() Vec3 {
	return Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return Scale(0.5, Add(b.Min, b.Max))
}

// Union returns the smallest AABB containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{
		Min: Vec3{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: Vec3{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// Expand returns b grown outward by r in every direction.
func (b AABB) Expand(r float64) AABB {
	d := Vec3{X: r, Y: r, Z: r}
	return AABB{Min: Sub(b.Min, d), Max: Add(b.Max, d)}
}

// Intersects reports whether a and b overlap (touching counts as
// overlapping).
func Intersects(a, b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// FromSphere returns the AABB bounding a sphere of the given radius
// centred at c.
func FromSphere(c Vec3, radius float64) AABB {
	d := Vec3{X: radius, Y: radius, Z: radius}
	return AABB{Min: Sub(c, d), Max: Add(c, d)}
}

// FromSegment returns the AABB bounding the capsule swept between a and
// b with the given radius.
func FromSegment(a, b Vec3, radius float64) AABB {
	return Union(FromSphere(a, radius), FromSphere(b, radius))
}
