package contour

import "github.com/pthm-cable/moulded/grid"

// emitFaces walks every internal grid edge; an edge with a sign change
// is shared by exactly four cells, each of which (if it is a surface
// cell) owns one vertex of the resulting quad. The quad is split along
// its shorter diagonal and wound so the outward side matches the sign
// direction of the edge crossing, checked independently per axis: an
// x-direction edge's winding depends on the sign change along X, a
// y-direction edge's on Y, and a z-direction edge's on Z. Checking only
// one axis' sign for every edge direction (as the original source did)
// produces inverted triangles on two of the three edge families.
func emitFaces(g grid.Grid, index map[cellKey]uint32, m *Mesh) {
	res := g.Resolution()
	if res < 2 {
		return
	}
	cellsPerAxis := res - 1

	// x-direction edges: between (x,y,z) and (x+1,y,z)
	for z := uint32(1); z < cellsPerAxis; z++ {
		for y := uint32(1); y < cellsPerAxis; y++ {
			for x := uint32(0); x < cellsPerAxis; x++ {
				v0, v1 := g.Get(x, y, z), g.Get(x+1, y, z)
				if (v0 < 0) == (v1 < 0) {
					continue
				}
				cells := [4]cellKey{
					{x, y - 1, z - 1},
					{x, y, z - 1},
					{x, y, z},
					{x, y - 1, z},
				}
				tryEmitQuad(index, m, cells, v0 < 0 && v1 >= 0)
			}
		}
	}

	// y-direction edges: between (x,y,z) and (x,y+1,z)
	for z := uint32(1); z < cellsPerAxis; z++ {
		for x := uint32(1); x < cellsPerAxis; x++ {
			for y := uint32(0); y < cellsPerAxis; y++ {
				v0, v1 := g.Get(x, y, z), g.Get(x, y+1, z)
				if (v0 < 0) == (v1 < 0) {
					continue
				}
				cells := [4]cellKey{
					{x - 1, y, z - 1},
					{x - 1, y, z},
					{x, y, z},
					{x, y, z - 1},
				}
				tryEmitQuad(index, m, cells, v0 < 0 && v1 >= 0)
			}
		}
	}

	// z-direction edges: between (x,y,z) and (x,y,z+1)
	for y := uint32(1); y < cellsPerAxis; y++ {
		for x := uint32(1); x < cellsPerAxis; x++ {
			for z := uint32(0); z < cellsPerAxis; z++ {
				v0, v1 := g.Get(x, y, z), g.Get(x, y, z+1)
				if (v0 < 0) == (v1 < 0) {
					continue
				}
				cells := [4]cellKey{
					{x - 1, y - 1, z},
					{x, y - 1, z},
					{x, y, z},
					{x - 1, y, z},
				}
				tryEmitQuad(index, m, cells, v0 < 0 && v1 >= 0)
			}
		}
	}
}

// tryEmitQuad looks up the four cell vertices around one surface edge
// and, if all four are surface cells, triangulates the quad along its
// shorter diagonal. enteringSurface selects the winding order: true
// when the edge transitions from inside to outside along the positive
// axis direction.
func tryEmitQuad(index map[cellKey]uint32, m *Mesh, cells [4]cellKey, enteringSurface bool) {
	var idx [4]uint32
	for i, c := range cells {
		v, ok := index[c]
		if !ok {
			return
		}
		idx[i] = v
	}

	a, b, c, d := idx[0], idx[1], idx[2], idx[3]

	diag1 := vertexDistance(m, a, c)
	diag2 := vertexDistance(m, b, d)

	var tris [2][3]uint32
	if diag1 <= diag2 {
		tris = [2][3]uint32{{a, b, c}, {a, c, d}}
	} else {
		tris = [2][3]uint32{{a, b, d}, {b, c, d}}
	}

	if !enteringSurface {
		for i := range tris {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
	}

	for _, tri := range tris {
		m.Indices = append(m.Indices, tri[0], tri[1], tri[2])
	}
}

func vertexDistance(m *Mesh, i, j uint32) float64 {
	a, b := m.Vertices[i], m.Vertices[j]
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
