// Package sdf implements the signed distance field primitives, the
// polynomial smooth-min blend used to compose them, and the
// central-difference gradient used by the dual contouring extractor.
package sdf

import (
	"math"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/spline"
	"github.com/pthm-cable/moulded/vecmath"
)

// Sphere returns the signed distance from p to a sphere of the given
// radius centred at center. Negative inside, positive outside.
func Sphere(p, center vecmath.Vec3, radius float64) float64 {
	return vecmath.Norm(vecmath.Sub(p, center)) - radius
}

// Capsule returns the signed distance from p to a capsule swept between
// a and b with the given radius. Degenerates to a sphere at a when the
// segment is (near) zero length.
func Capsule(p, a, b vecmath.Vec3, radius float64) float64 {
	pa := vecmath.Sub(p, a)
	ba := vecmath.Sub(b, a)
	baDot := vecmath.Dot(ba, ba)
	if baDot < 1e-8 {
		return Sphere(p, a, radius)
	}
	h := vecmath.Clamp01(vecmath.Dot(pa, ba) / baDot)
	closest := vecmath.Scale(h, ba)
	return vecmath.Norm(vecmath.Sub(pa, closest)) - radius
}

// RingProfile is one radius-profile ring of a ProfiledCapsule, a closed
// sequence of control points sampled around the bone's circumference at
// a fixed position along its length.
type RingProfile struct {
	// Radii holds the control points sampled around the ring, in
	// ascending angle order starting at angle zero in the bone's
	// normal direction.
	Radii []float64
}

// ProfiledCapsule is a capsule whose radius varies both along the bone
// (between rings, open/clamped interpolation) and around the bone
// (within a ring, closed/looped interpolation).
type ProfiledCapsule struct {
	A, B  vecmath.Vec3
	Rings []RingProfile
	// UseSplines selects bicubic (Catmull-Rom) interpolation over both
	// axes. When false, RadiusAt falls back to bilinear interpolation.
	UseSplines bool
}

// RadiusAt returns the interpolated radius at bone parameter t in [0,1]
// and ring angle theta (radians): bicubically blending the closed
// per-ring splines along the open bone direction when UseSplines is set,
// or bilinearly interpolating the same two axes otherwise.
func (pc ProfiledCapsule) RadiusAt(t, theta float64) float64 {
	n := len(pc.Rings)
	if n == 0 {
		return 0
	}
	if pc.UseSplines {
		if n == 1 {
			return spline.Closed(pc.Rings[0].Radii, theta)
		}
		perRing := make([]float64, n)
		for i, ring := range pc.Rings {
			perRing[i] = spline.Closed(ring.Radii, theta)
		}
		return spline.Open(perRing, t)
	}
	if n == 1 {
		return spline.ClosedLinear(pc.Rings[0].Radii, theta)
	}
	perRing := make([]float64, n)
	for i, ring := range pc.Rings {
		perRing[i] = spline.ClosedLinear(ring.Radii, theta)
	}
	return spline.OpenLinear(perRing, t)
}

// meanRadius returns the mean of a ring's control points, the constant,
// angle-independent radius used beyond the bone's endpoints.
func meanRadius(radii []float64) float64 {
	if len(radii) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range radii {
		sum += r
	}
	return sum / float64(len(radii))
}

// MaxSample returns the largest radius control point across every ring,
// the same conservative bound mould.DirtyBounds computes (through the
// mould package's own maxProfileSample) for a ProfiledCapsule.
func (pc ProfiledCapsule) MaxSample() float64 {
	max := 0.0
	for _, ring := range pc.Rings {
		for _, r := range ring.Radii {
			if r > max {
				max = r
			}
		}
	}
	return max
}

// SDF returns the signed distance from p to the profiled capsule. Beyond
// either endpoint, the capsule degenerates to a sphere of radius equal
// to the mean of the nearest ring's samples rather than continuing to
// vary with angle.
func (pc ProfiledCapsule) SDF(p vecmath.Vec3) float64 {
	ba := vecmath.Sub(pc.B, pc.A)
	baDot := vecmath.Dot(ba, ba)
	if baDot < 1e-8 {
		r := 0.0
		if len(pc.Rings) > 0 {
			r = meanRadius(pc.Rings[0].Radii)
		}
		return Sphere(p, pc.A, r)
	}

	pa := vecmath.Sub(p, pc.A)
	tRaw := vecmath.Dot(pa, ba) / baDot

	if tRaw < 0 {
		r := 0.0
		if len(pc.Rings) > 0 {
			r = meanRadius(pc.Rings[0].Radii)
		}
		return Sphere(p, pc.A, r)
	}
	if tRaw > 1 {
		r := 0.0
		if len(pc.Rings) > 0 {
			r = meanRadius(pc.Rings[len(pc.Rings)-1].Radii)
		}
		return Sphere(p, pc.B, r)
	}

	closest := vecmath.Add(pc.A, vecmath.Scale(tRaw, ba))
	radial := vecmath.Sub(p, closest)
	d := vecmath.Norm(radial)

	_, normal, binormal := vecmath.OrthonormalFrame(ba)
	theta := math.Atan2(vecmath.Dot(radial, binormal), vecmath.Dot(radial, normal))

	radius := pc.RadiusAt(tRaw, theta)
	return d - radius
}

// SmoothMin is the polynomial smooth-minimum used to blend two SDF
// values across a blend radius k. Reduces to math.Min(a, b) as k
// approaches zero.
func SmoothMin(a, b, k float64) float64 {
	if k <= 0 {
		return math.Min(a, b)
	}
	h := math.Max(0, k-math.Abs(a-b))
	return math.Min(a, b) - h*h*0.25/k
}

// Field is any function that can be evaluated as a signed distance at a
// point; satisfied by Sphere/Capsule/ProfiledCapsule closures and by a
// mould set's composed evaluation.
type Field func(p vecmath.Vec3) float64

// Sanitize treats a NaN signed distance as +Inf, so a degenerate sample
// never satisfies a sign-change test or pulls a QEF/Newton solve toward it.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// Gradient estimates the gradient of f at p via central differences with
// step config.Cfg().Numerics.GradientEpsilon, the same step used
// throughout the pipeline for consistency between incremental and full
// re-evaluation.
func Gradient(f Field, p vecmath.Vec3) vecmath.Vec3 {
	eps := config.Cfg().Numerics.GradientEpsilon
	sample := func(q vecmath.Vec3) float64 { return Sanitize(f(q)) }
	dx := (sample(vecmath.Add(p, vecmath.Vec3{X: eps})) - sample(vecmath.Sub(p, vecmath.Vec3{X: eps}))) / (2 * eps)
	dy := (sample(vecmath.Add(p, vecmath.Vec3{Y: eps})) - sample(vecmath.Sub(p, vecmath.Vec3{Y: eps}))) / (2 * eps)
	dz := (sample(vecmath.Add(p, vecmath.Vec3{Z: eps})) - sample(vecmath.Sub(p, vecmath.Vec3{Z: eps}))) / (2 * eps)
	return vecmath.Vec3{X: dx, Y: dy, Z: dz}
}
