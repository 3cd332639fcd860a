package skeleton

import (
	"math"
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func TestComposedWorldTransform(t *testing.T) {
	s := New()
	s.AddJoint(Joint{ID: 0, Local: vecmath.Transform{Translation: vecmath.Vec3{X: 1}, Rotation: vecmath.Identity}})
	root := JointID(0)
	s.AddJoint(Joint{ID: 1, Parent: &root, Local: vecmath.Transform{Translation: vecmath.Vec3{X: 2}, Rotation: vecmath.Identity}})

	world, err := s.GetWorldTransform(1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(world.Translation.X-3) > 1e-9 {
		t.Errorf("composed translation.X = %v, want 3", world.Translation.X)
	}
}

func TestUnknownParentFails(t *testing.T) {
	s := New()
	missing := JointID(99)
	s.AddJoint(Joint{ID: 0, Parent: &missing})
	if _, err := s.GetWorldTransform(0); err == nil {
		t.Error("expected error for unresolved parent")
	}
}

func TestCacheInvalidatedOnMutation(t *testing.T) {
	s := New()
	s.AddJoint(Joint{ID: 0, Local: vecmath.IdentityTransform})
	first, _ := s.GetWorldTransform(0)
	if err := s.MoveJoint(0, vecmath.Vec3{X: 5}); err != nil {
		t.Fatal(err)
	}
	second, err := s.GetWorldTransform(0)
	if err != nil {
		t.Fatal(err)
	}
	if first.Translation == second.Translation {
		t.Error("cache was not invalidated after MoveJoint")
	}
}

func TestImmutableMatchesCached(t *testing.T) {
	s := New()
	s.AddJoint(Joint{ID: 0, Local: vecmath.Transform{Translation: vecmath.Vec3{X: 1, Y: 2, Z: 3}, Rotation: vecmath.Identity}})
	root := JointID(0)
	s.AddJoint(Joint{ID: 1, Parent: &root, Local: vecmath.Transform{Translation: vecmath.Vec3{X: 1}, Rotation: vecmath.Identity}})

	cached, _ := s.GetWorldTransform(1)
	immutable, err := s.GetWorldTransformImmutable(1)
	if err != nil {
		t.Fatal(err)
	}
	if cached.Translation != immutable.Translation {
		t.Errorf("cached %+v != immutable %+v", cached.Translation, immutable.Translation)
	}
}
