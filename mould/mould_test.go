package mould

import (
	"math"
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func TestSingleSphereEvaluate(t *testing.T) {
	sk := skeleton.New()
	set := NewSet()
	set.Put(Mould{ID: 0, Shape: ShapeSphere, Radius: 1})
	if err := set.RebuildCache(sk); err != nil {
		t.Fatal(err)
	}
	d := set.Evaluate(vecmath.Vec3{X: 2, Y: 0, Z: 0})
	want := 1.0
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("Evaluate = %v, want %v", d, want)
	}
}

func TestDataChangedDetectsRadius(t *testing.T) {
	a := Mould{Shape: ShapeSphere, Radius: 1}
	b := Mould{Shape: ShapeSphere, Radius: 1.5}
	if !DataChanged(a, b) {
		t.Error("expected radius change to be detected")
	}
	if DataChanged(a, a) {
		t.Error("expected identical moulds to report unchanged")
	}
}

func TestDirtySetBoundsCoversNewMould(t *testing.T) {
	sk := skeleton.New()
	prev := NewSet()
	next := NewSet()
	next.Put(Mould{ID: 0, Shape: ShapeSphere, Radius: 1, LocalA: vecmath.Vec3{X: 5}})

	_, dirty, err := DirtySetBounds(prev, next, sk, sk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("expected a new mould to produce a dirty region")
	}
}

func TestDirtySetBoundsCoversRemovedMould(t *testing.T) {
	sk := skeleton.New()
	prev := NewSet()
	prev.Put(Mould{ID: 0, Shape: ShapeSphere, Radius: 1})
	next := NewSet()

	_, dirty, err := DirtySetBounds(prev, next, sk, sk, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("expected a removed mould to produce a dirty region")
	}
}
