package pipeline

import (
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func rootJoint(id skeleton.JointID) JointInput {
	return JointInput{ID: id, Position: vecmath.Vec3{}, Rotation: vecmath.Identity}
}

func TestGenerateMeshUninitialized(t *testing.T) {
	p := New()
	if _, err := p.GenerateMesh(0, true); err != ErrUninitialized {
		t.Fatalf("err = %v, want ErrUninitialized", err)
	}
}

func TestGenerateMeshSphereProducesTriangles(t *testing.T) {
	p := New()
	if err := p.UpdateSkeleton([]JointInput{rootJoint(1)}); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateMoulds([]MouldInput{
		{ID: 1, Shape: mould.ShapeSphere, JointID: jointPtr(1), Radius: 0.4, BlendRadius: 0},
	}); err != nil {
		t.Fatal(err)
	}

	mesh, err := p.GenerateMesh(24, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) == 0 {
		t.Fatal("expected nonempty mesh")
	}
	if len(mesh.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(mesh.Indices))
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Fatalf("normals len %d != vertices len %d", len(mesh.Normals), len(mesh.Vertices))
	}
}

func TestGenerateMeshBrickPathProducesVertices(t *testing.T) {
	p := New()
	if err := p.UpdateSkeleton([]JointInput{rootJoint(1)}); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateMoulds([]MouldInput{
		{ID: 1, Shape: mould.ShapeSphere, JointID: jointPtr(1), Radius: 0.4, BlendRadius: 0},
	}); err != nil {
		t.Fatal(err)
	}

	threshold := config.Cfg().Storage.BrickResolutionThreshold
	mesh, err := p.GenerateMesh(threshold+8, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) == 0 {
		t.Fatal("expected nonempty mesh on brick path")
	}
}

func TestEncodeDecodeMeshRoundTrips(t *testing.T) {
	m := Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	buf := EncodeMesh(m)
	got, err := DecodeMesh(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != len(m.Vertices) || len(got.Indices) != len(m.Indices) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, m)
	}
	for i := range m.Vertices {
		if got.Vertices[i] != m.Vertices[i] {
			t.Fatalf("vertex %d = %v, want %v", i, got.Vertices[i], m.Vertices[i])
		}
	}
}

func TestDecodeMeshRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeMesh([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error on short buffer")
	}
}

func TestGetProfileControlPointsOrdering(t *testing.T) {
	p := New()
	if err := p.UpdateSkeleton([]JointInput{rootJoint(1)}); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateMoulds([]MouldInput{
		{
			ID:      2,
			Shape:   mould.ShapeProfiledCapsule,
			JointID: jointPtr(1),
			LocalA:  vecmath.Vec3{X: 0, Y: 0, Z: 0},
			LocalB:  &vecmath.Vec3{X: 0, Y: 1, Z: 0},
			Rings: []sdf.RingProfile{
				{Radii: []float64{0.1, 0.1, 0.1, 0.1}},
				{Radii: []float64{0.2, 0.2, 0.2, 0.2}},
			},
		},
	}); err != nil {
		t.Fatal(err)
	}

	points, err := p.GetProfileControlPoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(points) == 0 {
		t.Fatal("expected control points for profiled capsule")
	}
	for _, pt := range points {
		if pt.MouldID != 2 {
			t.Fatalf("unexpected mould id %d", pt.MouldID)
		}
	}
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if cur.SegmentIndex < prev.SegmentIndex ||
			(cur.SegmentIndex == prev.SegmentIndex && cur.SampleIndex <= prev.SampleIndex) {
			t.Fatalf("point %d (segment %d, sample %d) out of order after (segment %d, sample %d)",
				i, cur.SegmentIndex, cur.SampleIndex, prev.SegmentIndex, prev.SampleIndex)
		}
	}
}

func jointPtr(id skeleton.JointID) *skeleton.JointID { return &id }
