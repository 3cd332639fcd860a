// Package mould implements the composable SDF primitive set bound
// (optionally) to skeleton joints: the tagged-variant Mould type, its
// cached per-joint world transform, and the dirty-region tracking used
// by the pipeline's incremental update.
package mould

import (
	"fmt"
	"math"

	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

// Shape tags the kind of primitive a Mould describes. Moulds are a
// closed, small set of variants, not an open class hierarchy: the
// evaluator switches on Shape directly rather than dispatching through
// an interface method per spec.md's explicit design note.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeCapsule
	ShapeProfiledCapsule
)

// ID identifies a mould within a Set.
type ID uint32

// Mould is one SDF primitive, expressed in the local space of its bound
// joint (or world space if JointID is nil).
type Mould struct {
	ID      ID
	Shape   Shape
	JointID *skeleton.JointID
	LocalA  vecmath.Vec3
	// LocalB is the capsule end point. Nil means no end point was given;
	// required for Capsule/ProfiledCapsule, ignored for Sphere.
	LocalB      *vecmath.Vec3
	Radius      float64 // Sphere/Capsule radius
	Rings       []sdf.RingProfile
	BlendRadius float64
	// UseSplines selects bicubic interpolation of the profile rings. Nil
	// defaults to true.
	UseSplines *bool
}

// useSplines resolves the mould's spline preference, defaulting to true.
func (m Mould) useSplines() bool {
	return m.UseSplines == nil || *m.UseSplines
}

// localB resolves the optional end point, defaulting to LocalA when absent
// (only relevant to Sphere, whose evaluation never reads worldB).
func (m Mould) localB() vecmath.Vec3 {
	if m.LocalB == nil {
		return m.LocalA
	}
	return *m.LocalB
}

// Validate reports an error if the mould's data cannot be evaluated:
// a Capsule or ProfiledCapsule with no end point, or a ProfiledCapsule
// with no rings or a ring with no angle samples.
func (m Mould) Validate() error {
	switch m.Shape {
	case ShapeCapsule:
		if m.LocalB == nil {
			return fmt.Errorf("mould %d: capsule has no end point", m.ID)
		}
	case ShapeProfiledCapsule:
		if m.LocalB == nil {
			return fmt.Errorf("mould %d: profiled capsule has no end point", m.ID)
		}
		if len(m.Rings) == 0 {
			return fmt.Errorf("mould %d: profiled capsule has no profile rings", m.ID)
		}
		for i, ring := range m.Rings {
			if len(ring.Radii) == 0 {
				return fmt.Errorf("mould %d: profile ring %d has no angle samples", m.ID, i)
			}
		}
	}
	return nil
}

// maxProfileSample returns the largest radius control point across this
// mould's profile rings, or Radius for non-profiled shapes.
func (m Mould) maxProfileSample() float64 {
	if m.Shape != ShapeProfiledCapsule {
		return m.Radius
	}
	max := 0.0
	for _, ring := range m.Rings {
		for _, r := range ring.Radii {
			if r > max {
				max = r
			}
		}
	}
	return max
}

// cached holds one mould's world-space evaluation inputs, rebuilt
// whenever the bound skeleton or the mould's own data changes.
type cached struct {
	worldA, worldB vecmath.Vec3
}

// Set is the full collection of moulds composed into one field. It
// caches the skeleton it was last bound against (a clone, per spec.md
// §9: a mould set clones the skeleton it was bound with rather than
// holding a live reference) plus each mould's cached world transform.
type Set struct {
	moulds   map[ID]*Mould
	order    []ID
	skeleton *skeleton.Skeleton
	cache    map[ID]cached
}

// NewSet returns an empty mould set.
func NewSet() *Set {
	return &Set{
		moulds: make(map[ID]*Mould),
		cache:  make(map[ID]cached),
	}
}

// Put inserts or replaces a mould.
func (s *Set) Put(m Mould) {
	if _, exists := s.moulds[m.ID]; !exists {
		s.order = append(s.order, m.ID)
	}
	cp := m
	s.moulds[m.ID] = &cp
}

// Delete removes a mould by id.
func (s *Set) Delete(id ID) {
	if _, ok := s.moulds[id]; !ok {
		return
	}
	delete(s.moulds, id)
	delete(s.cache, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the mould set's data (not its cache,
// which RebuildCache must recompute before the clone is evaluated).
func (s *Set) Clone() *Set {
	clone := NewSet()
	for _, id := range s.order {
		m := *s.moulds[id]
		clone.Put(m)
	}
	return clone
}

// WorldEndpoints returns the cached world-space A/B endpoints for id, as
// computed by the most recent RebuildCache. Returns false if id is
// unknown or RebuildCache has not yet run.
func (s *Set) WorldEndpoints(id ID) (a, b vecmath.Vec3, ok bool) {
	c, ok := s.cache[id]
	if !ok {
		return vecmath.Vec3{}, vecmath.Vec3{}, false
	}
	return c.worldA, c.worldB, true
}

// Get returns the mould with the given id.
func (s *Set) Get(id ID) (Mould, bool) {
	m, ok := s.moulds[id]
	if !ok {
		return Mould{}, false
	}
	return *m, true
}

// IDs returns every mould id in insertion order.
func (s *Set) IDs() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

// RebuildCache recomputes every mould's world-space endpoints against sk
// and stores a clone of sk as the skeleton this set is now bound to. It
// must be called after any skeleton or mould mutation, before Evaluate.
func (s *Set) RebuildCache(sk *skeleton.Skeleton) error {
	next := make(map[ID]cached, len(s.moulds))
	for _, id := range s.order {
		m := s.moulds[id]
		worldA, worldB := m.LocalA, m.localB()
		if m.JointID != nil {
			t, err := sk.GetWorldTransformImmutable(*m.JointID)
			if err != nil {
				return err
			}
			worldA = t.Apply(m.LocalA)
			worldB = t.Apply(m.localB())
		}
		next[id] = cached{worldA: worldA, worldB: worldB}
	}
	s.cache = next
	s.skeleton = sk.Clone()
	return nil
}

// field returns the SDF value of a single mould at p, using its cached
// world-space endpoints. Panics if RebuildCache has not run for id; this
// is a programmer error in the caller, not a recoverable input error.
func (s *Set) field(id ID, p vecmath.Vec3) float64 {
	m := s.moulds[id]
	c, ok := s.cache[id]
	if !ok {
		panic(fmt.Sprintf("mould: field evaluated for mould %d before RebuildCache", id))
	}
	switch m.Shape {
	case ShapeSphere:
		return sdf.Sanitize(sdf.Sphere(p, c.worldA, m.Radius))
	case ShapeCapsule:
		return sdf.Sanitize(sdf.Capsule(p, c.worldA, c.worldB, m.Radius))
	case ShapeProfiledCapsule:
		pc := sdf.ProfiledCapsule{A: c.worldA, B: c.worldB, Rings: m.Rings, UseSplines: m.useSplines()}
		return sdf.Sanitize(pc.SDF(p))
	default:
		return math.Inf(1)
	}
}

// Evaluate returns the composed signed distance at p: every mould's
// field blended together with the polynomial smooth-min, each using its
// own blend radius.
func (s *Set) Evaluate(p vecmath.Vec3) float64 {
	acc := math.Inf(1)
	for _, id := range s.order {
		v := s.field(id, p)
		acc = sdf.SmoothMin(acc, v, s.moulds[id].BlendRadius)
	}
	return acc
}

// Field adapts Evaluate to the sdf.Field signature.
func (s *Set) Field() sdf.Field { return s.Evaluate }
