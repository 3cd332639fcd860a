// Package contour implements dual contouring isosurface extraction over
// any grid.Grid: cell feature-vertex placement via QEF with a Newton
// projection fallback, fast-mode cell-center placement, and sign-change
// face emission with per-axis winding correction.
package contour

import (
	"math"

	"github.com/pthm-cable/moulded/concurrency"
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/grid"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/vecmath"
)

// Mesh is the extracted triangle surface: positions, per-vertex unit
// normals, and a flat triangle index list (three per triangle).
type Mesh struct {
	Vertices []vecmath.Vec3
	Normals  []vecmath.Vec3
	Indices  []uint32
}

type cellKey struct{ x, y, z uint32 }

// Extract runs dual contouring over g, using field to evaluate gradients
// at sub-voxel crossing points. fastMode places each cell's vertex at
// its center instead of solving the QEF; both modes must produce the
// same surface topology (same set of surface cells and faces), only the
// vertex positions differ.
func Extract(g grid.Grid, field sdf.Field, fastMode bool) Mesh {
	res := g.Resolution()
	if res < 2 {
		return Mesh{}
	}
	cellsPerAxis := res - 1

	surface := scanSurfaceCells(g, cellsPerAxis)
	if len(surface) == 0 {
		return Mesh{}
	}

	vertices := make([]vecmath.Vec3, len(surface))
	normals := make([]vecmath.Vec3, len(surface))
	index := make(map[cellKey]uint32, len(surface))
	keys := make([]cellKey, len(surface))
	i := 0
	for k := range surface {
		keys[i] = k
		index[k] = uint32(i)
		i++
	}

	concurrency.ParallelizeIndexed(len(keys), func(i int) {
		k := keys[i]
		v := placeVertex(g, field, k, fastMode)
		vertices[i] = v
		normals[i] = vecmath.Normalize(sdf.Gradient(field, v))
	})

	m := Mesh{Vertices: vertices, Normals: normals}
	emitFaces(g, index, &m)
	return m
}

func scanSurfaceCells(g grid.Grid, cellsPerAxis uint32) map[cellKey]struct{} {
	total := int(cellsPerAxis) * int(cellsPerAxis) * int(cellsPerAxis)
	hits := make([]bool, total)

	concurrency.ParallelizeIndexed(total, func(i int) {
		cx := uint32(i) % cellsPerAxis
		cy := (uint32(i) / cellsPerAxis) % cellsPerAxis
		cz := uint32(i) / (cellsPerAxis * cellsPerAxis)
		hits[i] = cellHasSignChange(g, cx, cy, cz)
	})

	out := make(map[cellKey]struct{})
	for i, hit := range hits {
		if !hit {
			continue
		}
		cx := uint32(i) % cellsPerAxis
		cy := (uint32(i) / cellsPerAxis) % cellsPerAxis
		cz := uint32(i) / (cellsPerAxis * cellsPerAxis)
		out[cellKey{cx, cy, cz}] = struct{}{}
	}
	return out
}

func cellHasSignChange(g grid.Grid, cx, cy, cz uint32) bool {
	min, max := math.Inf(1), math.Inf(-1)
	for dz := uint32(0); dz <= 1; dz++ {
		for dy := uint32(0); dy <= 1; dy++ {
			for dx := uint32(0); dx <= 1; dx++ {
				v := g.Get(cx+dx, cy+dy, cz+dz)
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
		}
	}
	return min < 0 && max >= 0
}

func placeVertex(g grid.Grid, field sdf.Field, k cellKey, fastMode bool) vecmath.Vec3 {
	lo := g.GetPosition(k.x, k.y, k.z)
	hi := g.GetPosition(k.x+1, k.y+1, k.z+1)
	center := vecmath.Scale(0.5, vecmath.Add(lo, hi))

	if fastMode {
		return center
	}

	samples := collectEdgeCrossings(g, field, k)
	if len(samples) == 0 {
		return newtonProject(field, center)
	}

	if v, ok := solveQEF(samples); ok {
		return clampToCell(v, lo, hi)
	}
	return newtonProject(field, center)
}

// collectEdgeCrossings samples the 12 edges of the cell for a sign
// change, linearly interpolating the crossing position from the corner
// values and evaluating the field's gradient there as the QEF normal.
func collectEdgeCrossings(g grid.Grid, field sdf.Field, k cellKey) []qefSample {
	type corner struct {
		dx, dy, dz uint32
	}
	corners := [8]corner{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // x-direction
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // y-direction
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z-direction
	}

	pos := func(c corner) vecmath.Vec3 { return g.GetPosition(k.x+c.dx, k.y+c.dy, k.z+c.dz) }
	val := func(c corner) float64 { return g.Get(k.x+c.dx, k.y+c.dy, k.z+c.dz) }

	var samples []qefSample
	for _, e := range edges {
		c0, c1 := corners[e[0]], corners[e[1]]
		v0, v1 := val(c0), val(c1)
		if (v0 < 0) == (v1 < 0) {
			continue
		}
		t := v0 / (v0 - v1)
		p0, p1 := pos(c0), pos(c1)
		crossing := vecmath.Add(p0, vecmath.Scale(t, vecmath.Sub(p1, p0)))
		n := vecmath.Normalize(sdf.Gradient(field, crossing))
		samples = append(samples, qefSample{point: crossing, normal: n})
	}
	return samples
}

// clampToCell clamps p into the cell's AABB [lo,hi] on each axis
// independently, so a QEF solution that overshoots the cell it was
// solved for still lands inside it rather than being discarded.
func clampToCell(p, lo, hi vecmath.Vec3) vecmath.Vec3 {
	clamp := func(v, a, b float64) float64 {
		if v < a {
			return a
		}
		if v > b {
			return b
		}
		return v
	}
	return vecmath.Vec3{
		X: clamp(p.X, lo.X, hi.X),
		Y: clamp(p.Y, lo.Y, hi.Y),
		Z: clamp(p.Z, lo.Z, hi.Z),
	}
}

// newtonProject iteratively pulls start toward the zero level set of
// field by stepping along the (normalized) gradient, the fallback used
// whenever the QEF solve is unreliable.
func newtonProject(field sdf.Field, start vecmath.Vec3) vecmath.Vec3 {
	numerics := config.Cfg().Numerics
	p := start
	for i := 0; i < numerics.NewtonMaxIterations; i++ {
		v := field(p)
		if math.Abs(v) < numerics.NewtonTolerance {
			break
		}
		g := sdf.Gradient(field, p)
		gn := vecmath.Dot(g, g)
		if gn < 1e-12 {
			break
		}
		p = vecmath.Sub(p, vecmath.Scale(v/gn, g))
	}
	return p
}
