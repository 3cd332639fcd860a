package pipeline

import (
	"math"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/vecmath"
)

// ControlPoint is one world-space sample of a ProfiledCapsule ring,
// returned by GetProfileControlPoints in (mould id, segment index,
// sample index) order.
type ControlPoint struct {
	MouldID      mould.ID
	SegmentIndex int
	SampleIndex  int
	Position     vecmath.Vec3
}

// GetProfileControlPoints returns, for each ProfiledCapsule mould, the
// world-space positions of every ring, sampled at a dense angular
// resolution when the mould uses splines and at one point per control
// point otherwise. Unlike the vertex-extraction approach in the source
// this generalizes, sampling here is purely analytical: each point is
// evaluated directly from the ring's radius profile rather than
// recovered from an intermediate mesh.
func (p *Pipeline) GetProfileControlPoints() ([]ControlPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, ErrUninitialized
	}
	if err := p.moulds.RebuildCache(p.sk); err != nil {
		return nil, err
	}

	samples := config.Cfg().Profile.AngleSamples
	if samples < 1 {
		samples = 1
	}

	var out []ControlPoint
	for _, id := range p.moulds.IDs() {
		m, _ := p.moulds.Get(id)
		if m.Shape != mould.ShapeProfiledCapsule || len(m.Rings) == 0 {
			continue
		}
		worldA, worldB, ok := p.moulds.WorldEndpoints(id)
		if !ok {
			continue
		}
		out = append(out, profileControlPoints(id, m, worldA, worldB, samples)...)
	}
	return out, nil
}

// profileControlPoints samples each ring of m at angleSamples points per
// the closed spline when the mould uses splines; otherwise it samples
// exactly one point per control point, the ring's own control points
// rather than a resampled analytical curve.
func profileControlPoints(id mould.ID, m mould.Mould, worldA, worldB vecmath.Vec3, angleSamples int) []ControlPoint {
	useSplines := m.UseSplines == nil || *m.UseSplines
	pc := sdf.ProfiledCapsule{A: worldA, B: worldB, Rings: m.Rings, UseSplines: useSplines}
	ba := vecmath.Sub(worldB, worldA)
	_, normal, binormal := vecmath.OrthonormalFrame(ba)

	n := len(m.Rings)
	out := make([]ControlPoint, 0, n*angleSamples)

	for segment := 0; segment < n; segment++ {
		t := 0.0
		if n > 1 {
			t = float64(segment) / float64(n-1)
		}
		center := vecmath.Add(worldA, vecmath.Scale(t, ba))

		perAngleSamples := angleSamples
		if !useSplines {
			perAngleSamples = len(m.Rings[segment].Radii)
			if perAngleSamples < 1 {
				perAngleSamples = 1
			}
		}

		for sample := 0; sample < perAngleSamples; sample++ {
			theta := 2 * math.Pi * float64(sample) / float64(perAngleSamples)
			r := pc.RadiusAt(t, theta)
			offset := vecmath.Add(vecmath.Scale(r*math.Cos(theta), normal), vecmath.Scale(r*math.Sin(theta), binormal))
			out = append(out, ControlPoint{
				MouldID:      id,
				SegmentIndex: segment,
				SampleIndex:  sample,
				Position:     vecmath.Add(center, offset),
			})
		}
	}
	return out
}
