package skeleton

import (
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/vecmath"
)

// dirtyEpsilon is the minimum translation (world units) or rotation
// (radians) delta that counts as "moved" for incremental update
// purposes; deltas below this are treated as numerical noise.
func dirtyEpsilon() float64 {
	return config.Cfg().Dirty.Epsilon
}

// Moved returns the ids of every joint whose local transform differs
// between prev and next by more than dirtyEpsilon, comparing by id so a
// joint present in only one of the two skeletons also counts as moved.
func Moved(prev, next *Skeleton) []JointID {
	seen := make(map[JointID]bool)
	var moved []JointID

	check := func(id JointID) {
		if seen[id] {
			return
		}
		seen[id] = true
		pj, pok := prev.Joint(id)
		nj, nok := next.Joint(id)
		if pok != nok {
			moved = append(moved, id)
			return
		}
		if !pok {
			return
		}
		if transformMoved(pj.Local, nj.Local) {
			moved = append(moved, id)
		}
	}

	for _, id := range prev.Joints() {
		check(id)
	}
	for _, id := range next.Joints() {
		check(id)
	}
	return moved
}

func transformMoved(a, b vecmath.Transform) bool {
	eps := dirtyEpsilon()
	if vecmath.Norm(vecmath.Sub(a.Translation, b.Translation)) > eps {
		return true
	}
	return vecmath.AngleBetween(a.Rotation, b.Rotation) > eps
}
