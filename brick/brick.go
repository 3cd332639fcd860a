// Package brick implements the sparse brick-backed voxel storage used
// above the dense/brick resolution threshold: an 8^3-voxel brick is only
// allocated if the surface passes near it, and incremental updates
// re-evaluate just the bricks touched by a dirty region instead of the
// whole volume.
package brick

import (
	"math"

	"github.com/pthm-cable/moulded/concurrency"
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/vecmath"
)

// Size is the number of voxels along each edge of a brick.
const Size = 8

// Coord addresses one brick within the map's brick grid.
type Coord struct{ X, Y, Z uint32 }

// brickData holds Size^3 sampled signed distances. A brick that has never
// been evaluated reports +Inf everywhere, meaning "outside", which is
// exactly the value an unallocated brick should return.
type brickData struct {
	values [Size * Size * Size]float64
}

func newBrickData() *brickData {
	b := &brickData{}
	for i := range b.values {
		b.values[i] = math.Inf(1)
	}
	return b
}

func localIndex(x, y, z uint32) int {
	return int(z)*Size*Size + int(y)*Size + int(x)
}

// Map is the sparse brick-backed grid.
type Map struct {
	resolution    uint32
	bricksPerAxis uint32
	bounds        vecmath.AABB
	voxelSize     float64
	bricks        map[Coord]*brickData
}

// New allocates an (initially empty) brick map covering bounds at the
// given overall per-axis resolution.
func New(resolution uint32, bounds vecmath.AABB) *Map {
	extent := bounds.Extent()
	voxelSize := extent.X / float64(resolution)
	bricksPerAxis := (resolution + Size - 1) / Size
	return &Map{
		resolution:    resolution,
		bricksPerAxis: bricksPerAxis,
		bounds:        bounds,
		voxelSize:     voxelSize,
		bricks:        make(map[Coord]*brickData),
	}
}

func (m *Map) brickCoordOf(x, y, z uint32) Coord {
	return Coord{X: x / Size, Y: y / Size, Z: z / Size}
}

// Resolution implements grid.Grid.
func (m *Map) Resolution() uint32 { return m.resolution }

// Get implements grid.Grid. Unallocated bricks report +Inf (outside).
func (m *Map) Get(x, y, z uint32) float64 {
	bc := m.brickCoordOf(x, y, z)
	b, ok := m.bricks[bc]
	if !ok {
		return math.Inf(1)
	}
	lx, ly, lz := x%Size, y%Size, z%Size
	return b.values[localIndex(lx, ly, lz)]
}

// GetPosition implements grid.Grid.
func (m *Map) GetPosition(x, y, z uint32) vecmath.Vec3 {
	return vecmath.Vec3{
		X: m.bounds.Min.X + float64(x)*m.voxelSize,
		Y: m.bounds.Min.Y + float64(y)*m.voxelSize,
		Z: m.bounds.Min.Z + float64(z)*m.voxelSize,
	}
}

// BrickCount returns the number of currently allocated bricks.
func (m *Map) BrickCount() int { return len(m.bricks) }

// MemoryUsage estimates resident bytes: one float64 per voxel across
// every allocated brick.
func (m *Map) MemoryUsage() int {
	return len(m.bricks) * Size * Size * Size * 8
}

func (m *Map) brickWorldBounds(bc Coord) vecmath.AABB {
	lo := vecmath.Vec3{
		X: m.bounds.Min.X + float64(bc.X*Size)*m.voxelSize,
		Y: m.bounds.Min.Y + float64(bc.Y*Size)*m.voxelSize,
		Z: m.bounds.Min.Z + float64(bc.Z*Size)*m.voxelSize,
	}
	span := float64(Size) * m.voxelSize
	hi := vecmath.Add(lo, vecmath.Vec3{X: span, Y: span, Z: span})
	return vecmath.AABB{Min: lo, Max: hi}
}

// brickDiagonal is the candidacy threshold: a brick is kept only if the
// field value at its center is within this distance of the surface. The
// geometric half-diagonal is the minimum distance that guarantees no
// brick intersecting the surface is missed; config.Storage.SurfaceThickness
// adds a tunable safety margin on top of it (see cmd/brickcalibrate).
func (m *Map) brickDiagonal() float64 {
	halfDiagonal := m.voxelSize * float64(Size) * 0.866
	return halfDiagonal + config.Cfg().Storage.SurfaceThickness
}

// AllocateSurfaceBricks performs the full two-pass allocation: pass one
// samples every brick's center to decide candidacy, pass two evaluates
// every voxel of every allocated brick.
func (m *Map) AllocateSurfaceBricks(field sdf.Field) {
	m.bricks = make(map[Coord]*brickData)
	candidates := m.scanCandidates(field, vecmath.AABB{}, false)
	m.evaluateBricks(field, candidates)
}

// UpdateSurfaceBricksInBounds re-runs both allocation passes, but scoped
// to bricks that intersect dirty, the world-space region invalidated by
// the most recent skeleton/mould update. Bricks outside dirty keep their
// previously evaluated values untouched. Bricks inside dirty that no
// longer qualify as surface-adjacent are deallocated.
func (m *Map) UpdateSurfaceBricksInBounds(field sdf.Field, dirty vecmath.AABB) {
	touched := m.scanCandidates(field, dirty, true)
	// Drop previously allocated bricks inside the dirty region that did
	// not survive this pass's candidacy check.
	for bc := range m.bricks {
		if !vecmath.Intersects(m.brickWorldBounds(bc), dirty) {
			continue
		}
		if _, keep := touched[bc]; !keep {
			delete(m.bricks, bc)
		}
	}
	m.evaluateBricks(field, touched)
}

// scanCandidates samples brick centers in parallel and returns the set
// of bricks whose center is within brickDiagonal of the surface. When
// scoped is true, only bricks intersecting region are sampled.
func (m *Map) scanCandidates(field sdf.Field, region vecmath.AABB, scoped bool) map[Coord]struct{} {
	n := int(m.bricksPerAxis)
	total := n * n * n
	threshold := m.brickDiagonal()

	type hit struct {
		bc Coord
		ok bool
	}
	hits := make([]hit, total)

	concurrency.ParallelizeIndexed(total, func(i int) {
		bx := uint32(i % n)
		by := uint32((i / n) % n)
		bz := uint32(i / (n * n))
		bc := Coord{X: bx, Y: by, Z: bz}

		if scoped && !vecmath.Intersects(m.brickWorldBounds(bc), region) {
			return
		}

		center := m.brickWorldBounds(bc).Center()
		v := sdf.Sanitize(field(center))
		hits[i] = hit{bc: bc, ok: math.Abs(v) <= threshold}
	})

	out := make(map[Coord]struct{})
	for _, h := range hits {
		if h.ok {
			out[h.bc] = struct{}{}
		}
	}
	return out
}

// evaluateBricks runs pass two: full per-voxel sampling of every brick
// in candidates, in parallel across bricks.
func (m *Map) evaluateBricks(field sdf.Field, candidates map[Coord]struct{}) {
	list := make([]Coord, 0, len(candidates))
	for bc := range candidates {
		list = append(list, bc)
		if _, ok := m.bricks[bc]; !ok {
			m.bricks[bc] = newBrickData()
		}
	}

	concurrency.ParallelizeIndexed(len(list), func(i int) {
		bc := list[i]
		b := m.bricks[bc]
		for lz := uint32(0); lz < Size; lz++ {
			for ly := uint32(0); ly < Size; ly++ {
				for lx := uint32(0); lx < Size; lx++ {
					x, y, z := bc.X*Size+lx, bc.Y*Size+ly, bc.Z*Size+lz
					if x >= m.resolution || y >= m.resolution || z >= m.resolution {
						b.values[localIndex(lx, ly, lz)] = math.Inf(1)
						continue
					}
					half := m.voxelSize * 0.5
					corner := m.GetPosition(x, y, z)
					center := vecmath.Add(corner, vecmath.Vec3{X: half, Y: half, Z: half})
					b.values[localIndex(lx, ly, lz)] = sdf.Sanitize(field(center))
				}
			}
		}
	})
}
