package sdf

import (
	"math"
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func TestSphereSurface(t *testing.T) {
	d := Sphere(vecmath.Vec3{X: 1, Y: 0, Z: 0}, vecmath.Zero, 1)
	if math.Abs(d) > 1e-9 {
		t.Errorf("Sphere surface distance = %v, want 0", d)
	}
	if Sphere(vecmath.Zero, vecmath.Zero, 1) >= 0 {
		t.Error("center of sphere should be inside (negative distance)")
	}
}

func TestCapsuleDegenerate(t *testing.T) {
	a := vecmath.Vec3{X: 1, Y: 2, Z: 3}
	got := Capsule(vecmath.Vec3{X: 2, Y: 2, Z: 3}, a, a, 0.5)
	want := Sphere(vecmath.Vec3{X: 2, Y: 2, Z: 3}, a, 0.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("degenerate capsule = %v, want %v", got, want)
	}
}

func TestSmoothMinReducesToMin(t *testing.T) {
	got := SmoothMin(1, 2, 0)
	if got != 1 {
		t.Errorf("SmoothMin with k=0 = %v, want min = 1", got)
	}
}

func TestSmoothMinOfEqualValuesNotAboveInput(t *testing.T) {
	a := SmoothMin(1, 1, 0.3)
	if a > 1+1e-9 {
		t.Errorf("SmoothMin(a,a) = %v, want <= a", a)
	}
}

func TestGradientOfSphereIsRadial(t *testing.T) {
	f := func(p vecmath.Vec3) float64 { return Sphere(p, vecmath.Zero, 1) }
	g := Gradient(f, vecmath.Vec3{X: 2, Y: 0, Z: 0})
	if math.Abs(g.X-1) > 1e-2 || math.Abs(g.Y) > 1e-2 || math.Abs(g.Z) > 1e-2 {
		t.Errorf("Gradient at (2,0,0) = %+v, want approx (1,0,0)", g)
	}
}
