package spline

import (
	"math"
	"testing"
)

func TestOpenEndpoints(t *testing.T) {
	points := []float64{1, 2, 4, 8}
	if got := Open(points, 0); math.Abs(got-points[0]) > 1e-9 {
		t.Errorf("Open(0) = %v, want %v", got, points[0])
	}
	if got := Open(points, 1); math.Abs(got-points[len(points)-1]) > 1e-9 {
		t.Errorf("Open(1) = %v, want %v", got, points[len(points)-1])
	}
}

func TestOpenMonotoneSection(t *testing.T) {
	points := []float64{0, 1, 2, 3}
	prev := Open(points, 0)
	for i := 1; i <= 10; i++ {
		u := float64(i) / 10
		v := Open(points, u)
		if v < prev-1e-9 {
			t.Errorf("Open not monotone at u=%v: %v < %v", u, v, prev)
		}
		prev = v
	}
}

func TestClosedWraparound(t *testing.T) {
	points := []float64{1, 2, 3, 4}
	a := Closed(points, 0)
	b := Closed(points, 2*math.Pi)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Closed(0) = %v, Closed(2pi) = %v, want equal", a, b)
	}
	c := Closed(points, -0.001)
	d := Closed(points, 2*math.Pi-0.001)
	if math.Abs(c-d) > 1e-9 {
		t.Errorf("Closed(-eps) = %v, Closed(2pi-eps) = %v, want equal", c, d)
	}
}

func TestClosedSinglePoint(t *testing.T) {
	if got := Closed([]float64{5}, 1.23); got != 5 {
		t.Errorf("Closed single point = %v, want 5", got)
	}
}

func TestOpenSinglePoint(t *testing.T) {
	if got := Open([]float64{5}, 0.5); got != 5 {
		t.Errorf("Open single point = %v, want 5", got)
	}
}
