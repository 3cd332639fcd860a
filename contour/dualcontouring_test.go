package contour

import (
	"math"
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/grid"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func sphereField(p vecmath.Vec3) float64 {
	return vecmath.Norm(p) - 0.6
}

func TestExtractSphereProducesTriangles(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}
	g := grid.NewDense(24, bounds)
	g.Evaluate(sphereField)

	m := Extract(g, sphereField, false)
	if len(m.Vertices) == 0 {
		t.Fatal("expected vertices")
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d out of range (%d vertices)", idx, len(m.Vertices))
		}
	}
}

func TestExtractNormalsAreUnitLength(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}
	g := grid.NewDense(20, bounds)
	g.Evaluate(sphereField)

	m := Extract(g, sphereField, false)
	for i, n := range m.Normals {
		length := vecmath.Norm(n)
		if math.Abs(length-1) > 1e-2 {
			t.Errorf("normal %d length = %v, want ~1", i, length)
		}
	}
}

func TestFastAndQualityTopologyMatch(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}
	g := grid.NewDense(20, bounds)
	g.Evaluate(sphereField)

	fast := Extract(g, sphereField, true)
	quality := Extract(g, sphereField, false)

	if len(fast.Vertices) != len(quality.Vertices) {
		t.Errorf("vertex counts differ: fast=%d quality=%d", len(fast.Vertices), len(quality.Vertices))
	}
	if len(fast.Indices) != len(quality.Indices) {
		t.Errorf("index counts differ: fast=%d quality=%d", len(fast.Indices), len(quality.Indices))
	}
}
