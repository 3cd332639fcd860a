package mould

import (
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

// dirtyEpsilon is the threshold below which a scalar/vector delta is
// treated as numerical noise rather than a real change, matching the
// skeleton package's joint-moved threshold.
func dirtyEpsilon() float64 {
	return config.Cfg().Dirty.Epsilon
}

// vec3Changed reports whether a and b differ by more than dirtyEpsilon.
func vec3Changed(a, b vecmath.Vec3) bool {
	return vecmath.Norm(vecmath.Sub(a, b)) > dirtyEpsilon()
}

func scalarChanged(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > dirtyEpsilon()
}

// localBChanged reports whether two optional end points differ: present
// on one side but not the other, or both present and differing.
func localBChanged(a, b *vecmath.Vec3) bool {
	if (a == nil) != (b == nil) {
		return true
	}
	if a == nil {
		return false
	}
	return vec3Changed(*a, *b)
}

// DataChanged reports whether two moulds' own data (shape, binding,
// scalar and ring fields) differ, ignoring id. It does not consider
// skeleton motion; a mould bound to a moved joint is covered separately
// by the moved-joint set.
func DataChanged(a, b Mould) bool {
	if a.Shape != b.Shape {
		return true
	}
	if (a.JointID == nil) != (b.JointID == nil) {
		return true
	}
	if a.JointID != nil && *a.JointID != *b.JointID {
		return true
	}
	if vec3Changed(a.LocalA, b.LocalA) || localBChanged(a.LocalB, b.LocalB) {
		return true
	}
	if scalarChanged(a.Radius, b.Radius) || scalarChanged(a.BlendRadius, b.BlendRadius) {
		return true
	}
	if a.useSplines() != b.useSplines() {
		return true
	}
	if len(a.Rings) != len(b.Rings) {
		return true
	}
	for i := range a.Rings {
		ra, rb := a.Rings[i].Radii, b.Rings[i].Radii
		if len(ra) != len(rb) {
			return true
		}
		for j := range ra {
			if scalarChanged(ra[j], rb[j]) {
				return true
			}
		}
	}
	return false
}

// DirtyBounds returns the world-space AABB a changed or moved mould
// invalidates under sk: the segment/point swept by the mould expanded by
// its blend radius and, for ProfiledCapsule, by the largest radial
// profile sample rather than the nominal Radius field (spec's correction
// of the source, which expanded only by Radius+BlendRadius even though a
// profile sample can exceed Radius).
func (m Mould) DirtyBounds(sk *skeleton.Skeleton) (vecmath.AABB, error) {
	worldA, worldB := m.LocalA, m.localB()
	if m.JointID != nil {
		t, err := sk.GetWorldTransformImmutable(*m.JointID)
		if err != nil {
			return vecmath.AABB{}, err
		}
		worldA = t.Apply(m.LocalA)
		worldB = t.Apply(m.localB())
	}

	expand := m.maxProfileSample() + m.BlendRadius
	switch m.Shape {
	case ShapeSphere:
		return vecmath.FromSphere(worldA, expand), nil
	default:
		return vecmath.FromSegment(worldA, worldB, expand), nil
	}
}

// DirtySetBounds computes the union dirty AABB between two mould-set
// snapshots taken against their respective skeleton snapshots: every
// mould that is new, removed, data-changed, or bound to a joint present
// in movedJoints contributes its DirtyBounds (removed moulds are bounded
// under prevSkeleton, since nextSkeleton may no longer resolve their
// joint binding). Returns false if nothing is dirty.
func DirtySetBounds(prev, next *Set, prevSkeleton, nextSkeleton *skeleton.Skeleton, movedJoints map[skeleton.JointID]bool) (vecmath.AABB, bool, error) {
	var (
		result vecmath.AABB
		any    bool
	)

	union := func(b vecmath.AABB) {
		if !any {
			result = b
			any = true
			return
		}
		result = vecmath.Union(result, b)
	}

	for _, id := range next.IDs() {
		nm, _ := next.Get(id)
		pm, existed := prev.Get(id)

		dirty := !existed || DataChanged(pm, nm) || boundToMoved(nm, movedJoints)
		if !dirty {
			continue
		}
		b, err := nm.DirtyBounds(nextSkeleton)
		if err != nil {
			return vecmath.AABB{}, false, err
		}
		union(b)
	}

	for _, id := range prev.IDs() {
		if _, stillExists := next.Get(id); stillExists {
			continue
		}
		pm, _ := prev.Get(id)
		b, err := pm.DirtyBounds(prevSkeleton)
		if err != nil {
			return vecmath.AABB{}, false, err
		}
		union(b)
	}

	return result, any, nil
}

func boundToMoved(m Mould, movedJoints map[skeleton.JointID]bool) bool {
	if m.JointID == nil {
		return false
	}
	return movedJoints[*m.JointID]
}
