// Package grid defines the capability interface the dual contouring
// extractor is generic over, plus the dense flat-array implementation of
// it. Both the dense grid here and the sparse brick map in package brick
// satisfy Grid, so the extractor never needs a type switch or dynamic
// dispatch between the two storage strategies.
package grid

import "github.com/pthm-cable/moulded/vecmath"

// Grid is the minimal read surface dual contouring needs from a voxel
// storage backend.
type Grid interface {
	// Resolution returns the number of samples along each axis.
	Resolution() uint32
	// Get returns the stored signed distance at voxel (x,y,z).
	Get(x, y, z uint32) float64
	// GetPosition returns the world-space position of voxel (x,y,z).
	GetPosition(x, y, z uint32) vecmath.Vec3
}
