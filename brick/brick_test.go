package brick

import (
	"math"
	"testing"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/vecmath"
)

func init() {
	config.MustInit("")
}

func sphereField(p vecmath.Vec3) float64 {
	return vecmath.Norm(p) - 0.5
}

func TestUnallocatedVoxelIsOutside(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}
	m := New(32, bounds)
	if v := m.Get(0, 0, 0); !math.IsInf(v, 1) {
		t.Errorf("unallocated voxel = %v, want +Inf", v)
	}
}

func TestAllocateSurfaceBricksFindsSurface(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}
	m := New(32, bounds)
	m.AllocateSurfaceBricks(sphereField)
	if m.BrickCount() == 0 {
		t.Fatal("expected at least one allocated brick near the sphere surface")
	}
	if m.BrickCount() == int(m.bricksPerAxis*m.bricksPerAxis*m.bricksPerAxis) {
		t.Error("expected a sparse allocation, not every brick")
	}
}

func TestIncrementalUpdateMatchesFullRebuild(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.Vec3{X: -1, Y: -1, Z: -1}, Max: vecmath.Vec3{X: 1, Y: 1, Z: 1}}

	full := New(32, bounds)
	full.AllocateSurfaceBricks(sphereField)

	incremental := New(32, bounds)
	incremental.AllocateSurfaceBricks(sphereField)
	// Re-run the whole volume as a "dirty" region; should reproduce the
	// same allocation and values as the full rebuild.
	incremental.UpdateSurfaceBricksInBounds(sphereField, bounds.Expand(1))

	if full.BrickCount() != incremental.BrickCount() {
		t.Fatalf("brick counts differ: full=%d incremental=%d", full.BrickCount(), incremental.BrickCount())
	}
	for bc := range full.bricks {
		if _, ok := incremental.bricks[bc]; !ok {
			t.Errorf("incremental missing brick %+v present in full rebuild", bc)
		}
	}
}
