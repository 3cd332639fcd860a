// Package spline implements the Catmull-Rom interpolation used to sample
// a ProfiledCapsule's ring profile, both along the bone (open, clamped
// ends) and around the ring (closed, looped).
package spline

import "math"

// basis evaluates the standard tau=0.5 Catmull-Rom basis through four
// control points at parameter t in [0,1], interpolating between p1 and p2.
func basis(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	a := 2 * p1
	b := -p0 + p2
	c := 2*p0 - 5*p1 + 4*p2 - p3
	d := -p0 + 3*p1 - 3*p2 + p3
	return 0.5 * (a + b*t + c*t2 + d*t3)
}

// Open evaluates a clamped Catmull-Rom spline through points at parameter
// u in [0,1] spanning the whole point sequence. The first and last
// control points are repeated so the curve passes exactly through the
// first and last samples; the end tangent is then half the adjacent
// chord, not zero. Used for the bone-direction sampling of a ring profile.
func Open(points []float64, u float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return points[0]
	}
	u = clamp01(u)
	segments := n - 1
	scaled := u * float64(segments)
	i := int(scaled)
	if i >= segments {
		i = segments - 1
	}
	localT := scaled - float64(i)

	get := func(idx int) float64 {
		if idx < 0 {
			return points[0]
		}
		if idx >= n {
			return points[n-1]
		}
		return points[idx]
	}

	return basis(get(i-1), get(i), get(i+1), get(i+2), localT)
}

// Closed evaluates a looped Catmull-Rom spline through points parametrized
// by an angle in [0, 2*pi), wrapping around via modular indexing. Used to
// sample a ring profile around its circumference.
func Closed(points []float64, angle float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return points[0]
	}

	twoPi := 2 * math.Pi
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}

	scaled := a / twoPi * float64(n)
	i := int(math.Floor(scaled))
	localT := scaled - float64(i)

	wrap := func(idx int) float64 {
		idx = ((idx % n) + n) % n
		return points[idx]
	}

	return basis(wrap(i-1), wrap(i), wrap(i+1), wrap(i+2), localT)
}

// OpenLinear evaluates a clamped piecewise-linear interpolation through
// points at parameter u in [0,1], the bilinear-over-t counterpart to Open
// used when a mould disables Catmull-Rom splining.
func OpenLinear(points []float64, u float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return points[0]
	}
	u = clamp01(u)
	segments := n - 1
	scaled := u * float64(segments)
	i := int(scaled)
	if i >= segments {
		i = segments - 1
	}
	localT := scaled - float64(i)
	return points[i] + (points[i+1]-points[i])*localT
}

// ClosedLinear evaluates a looped piecewise-linear interpolation through
// points parametrized by an angle in [0, 2*pi), the bilinear-over-theta
// counterpart to Closed used when a mould disables Catmull-Rom splining.
func ClosedLinear(points []float64, angle float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return points[0]
	}

	twoPi := 2 * math.Pi
	a := math.Mod(angle, twoPi)
	if a < 0 {
		a += twoPi
	}

	scaled := a / twoPi * float64(n)
	i := int(math.Floor(scaled))
	localT := scaled - float64(i)
	i0 := ((i % n) + n) % n
	i1 := (i0 + 1) % n
	return points[i0] + (points[i1]-points[i0])*localT
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
