package grid

import (
	"github.com/pthm-cable/moulded/concurrency"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/vecmath"
)

// Dense is a full resolution^3 flat array of sampled signed distances,
// used below the brick-map resolution threshold where sparse storage
// would not pay for itself.
type Dense struct {
	resolution uint32
	bounds     vecmath.AABB
	cellSize   float64
	data       []float64
}

// NewDense allocates an unevaluated dense grid covering bounds at the
// given resolution per axis.
func NewDense(resolution uint32, bounds vecmath.AABB) *Dense {
	extent := bounds.Extent()
	maxExtent := extent.X
	if extent.Y > maxExtent {
		maxExtent = extent.Y
	}
	if extent.Z > maxExtent {
		maxExtent = extent.Z
	}
	cellSize := maxExtent / float64(resolution-1)
	return &Dense{
		resolution: resolution,
		bounds:     bounds,
		cellSize:   cellSize,
		data:       make([]float64, int(resolution)*int(resolution)*int(resolution)),
	}
}

func (d *Dense) index(x, y, z uint32) int {
	r := int(d.resolution)
	return int(x) + int(y)*r + int(z)*r*r
}

// Resolution implements Grid.
func (d *Dense) Resolution() uint32 { return d.resolution }

// Get implements Grid.
func (d *Dense) Get(x, y, z uint32) float64 { return d.data[d.index(x, y, z)] }

// GetPosition implements Grid.
func (d *Dense) GetPosition(x, y, z uint32) vecmath.Vec3 {
	return vecmath.Vec3{
		X: d.bounds.Min.X + float64(x)*d.cellSize,
		Y: d.bounds.Min.Y + float64(y)*d.cellSize,
		Z: d.bounds.Min.Z + float64(z)*d.cellSize,
	}
}

// Evaluate samples field at every voxel position in parallel.
func (d *Dense) Evaluate(field sdf.Field) {
	r := int(d.resolution)
	total := r * r * r
	concurrency.ParallelizeIndexed(total, func(i int) {
		x := uint32(i % r)
		y := uint32((i / r) % r)
		z := uint32(i / (r * r))
		p := d.GetPosition(x, y, z)
		d.data[d.index(x, y, z)] = sdf.Sanitize(field(p))
	})
}
