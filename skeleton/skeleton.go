// Package skeleton implements the joint tree and its cached world-space
// transform computation.
package skeleton

import (
	"fmt"

	"github.com/pthm-cable/moulded/vecmath"
)

// JointID identifies a joint within a Skeleton.
type JointID uint32

// Joint is one node of the skeleton tree: a local rigid transform
// relative to Parent, or relative to the skeleton root if Parent is nil.
type Joint struct {
	ID     JointID
	Parent *JointID
	Local  vecmath.Transform
}

// Skeleton holds a joint tree plus a lazily (re)computed cache of world
// transforms. The cache is invalidated wholesale on any mutation and
// recomputed on the next cache read, mirroring the single
// cache-valid-flag contract of the system this package generalizes.
type Skeleton struct {
	joints     map[JointID]*Joint
	order      []JointID
	cache      map[JointID]vecmath.Transform
	cacheValid bool
}

// New returns an empty skeleton.
func New() *Skeleton {
	return &Skeleton{
		joints: make(map[JointID]*Joint),
		cache:  make(map[JointID]vecmath.Transform),
	}
}

// AddJoint inserts or replaces a joint and invalidates the transform
// cache.
func (s *Skeleton) AddJoint(j Joint) {
	if _, exists := s.joints[j.ID]; !exists {
		s.order = append(s.order, j.ID)
	}
	cp := j
	s.joints[j.ID] = &cp
	s.cacheValid = false
}

// RemoveJoint removes a joint by id and invalidates the cache.
func (s *Skeleton) RemoveJoint(id JointID) {
	if _, ok := s.joints[id]; !ok {
		return
	}
	delete(s.joints, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.cacheValid = false
}

// SetLocalRotation updates a joint's local rotation and invalidates the
// cache. Returns an error if the joint does not exist.
func (s *Skeleton) SetLocalRotation(id JointID, rot vecmath.Quat) error {
	j, ok := s.joints[id]
	if !ok {
		return fmt.Errorf("skeleton: unknown joint %d", id)
	}
	j.Local.Rotation = rot
	s.cacheValid = false
	return nil
}

// MoveJoint updates a joint's local translation and invalidates the
// cache. Returns an error if the joint does not exist.
func (s *Skeleton) MoveJoint(id JointID, translation vecmath.Vec3) error {
	j, ok := s.joints[id]
	if !ok {
		return fmt.Errorf("skeleton: unknown joint %d", id)
	}
	j.Local.Translation = translation
	s.cacheValid = false
	return nil
}

// Joint returns the joint with the given id, if present.
func (s *Skeleton) Joint(id JointID) (Joint, bool) {
	j, ok := s.joints[id]
	if !ok {
		return Joint{}, false
	}
	return *j, true
}

// Joints returns every joint id currently in the skeleton, in insertion
// order.
func (s *Skeleton) Joints() []JointID {
	out := make([]JointID, len(s.order))
	copy(out, s.order)
	return out
}

// GetWorldTransform returns the world transform of the named joint,
// rebuilding the whole-tree cache first if it was invalidated since the
// last read.
func (s *Skeleton) GetWorldTransform(id JointID) (vecmath.Transform, error) {
	if !s.cacheValid {
		if err := s.rebuildCache(); err != nil {
			return vecmath.Transform{}, err
		}
	}
	t, ok := s.cache[id]
	if !ok {
		return vecmath.Transform{}, fmt.Errorf("skeleton: unknown joint %d", id)
	}
	return t, nil
}

func (s *Skeleton) rebuildCache() error {
	s.cache = make(map[JointID]vecmath.Transform, len(s.joints))
	for id := range s.joints {
		if _, err := s.computeWorldTransform(id, s.cache); err != nil {
			return err
		}
	}
	s.cacheValid = true
	return nil
}

func (s *Skeleton) computeWorldTransform(id JointID, cache map[JointID]vecmath.Transform) (vecmath.Transform, error) {
	if t, ok := cache[id]; ok {
		return t, nil
	}
	j, ok := s.joints[id]
	if !ok {
		return vecmath.Transform{}, fmt.Errorf("skeleton: unknown joint %d", id)
	}
	if j.Parent == nil {
		cache[id] = j.Local
		return j.Local, nil
	}
	parentWorld, err := s.computeWorldTransform(*j.Parent, cache)
	if err != nil {
		return vecmath.Transform{}, fmt.Errorf("skeleton: joint %d: %w", id, err)
	}
	world := parentWorld.Compose(j.Local)
	cache[id] = world
	return world, nil
}

// GetWorldTransformImmutable computes the world transform of a joint
// without touching the shared cache, safe to call concurrently from
// many goroutines during parallel SDF evaluation.
func (s *Skeleton) GetWorldTransformImmutable(id JointID) (vecmath.Transform, error) {
	j, ok := s.joints[id]
	if !ok {
		return vecmath.Transform{}, fmt.Errorf("skeleton: unknown joint %d", id)
	}
	if j.Parent == nil {
		return j.Local, nil
	}
	parentWorld, err := s.GetWorldTransformImmutable(*j.Parent)
	if err != nil {
		return vecmath.Transform{}, fmt.Errorf("skeleton: joint %d: %w", id, err)
	}
	return parentWorld.Compose(j.Local), nil
}

// TransformPointToWorld maps a point expressed in the given joint's local
// space into world space.
func (s *Skeleton) TransformPointToWorld(id JointID, p vecmath.Vec3) (vecmath.Vec3, error) {
	t, err := s.GetWorldTransform(id)
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return t.Apply(p), nil
}

// Clone returns a deep copy of the skeleton, used when a mould set caches
// the skeleton it was bound to.
func (s *Skeleton) Clone() *Skeleton {
	clone := New()
	for _, id := range s.order {
		j := *s.joints[id]
		clone.AddJoint(j)
	}
	return clone
}
