package main

import (
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/pipeline"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

// referenceResolution is the dense-grid resolution used as ground truth
// when judging how much surface the brick path's candidacy threshold
// misses.
const referenceResolution = 48

// brickResolution is the resolution the candidate parameters are judged
// at, always above any plausible brick_resolution_threshold so the
// sparse path is exercised regardless of the parameter under test.
const brickResolution = 160

// FitnessEvaluator scores a storage-threshold parameter set against a
// fixed reference scene: a skeleton with two joints and a profiled
// capsule plus a sphere mould, chosen to exercise both shape kinds and
// give the brick map a nontrivial, non-axis-aligned surface to track.
type FitnessEvaluator struct {
	params               *ParamVector
	baseCfg              *config.Config
	referenceVertexCount int
}

// NewFitnessEvaluator builds the evaluator and measures the reference
// (dense-grid) vertex count once, up front.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config) *FitnessEvaluator {
	refCfg := *baseCfg
	refCfg.Storage.BrickResolutionThreshold = referenceResolution + 1 // force dense
	config.Set(&refCfg)

	p := pipeline.New()
	root := skeleton.JointID(1)
	tip := skeleton.JointID(2)
	_ = p.UpdateSkeleton([]pipeline.JointInput{
		{ID: root, Position: vecmath.Vec3{}, Rotation: vecmath.Identity},
		{ID: tip, Parent: &root, Position: vecmath.Vec3{Y: 1}, Rotation: vecmath.Identity},
	})
	_ = p.UpdateMoulds(mouldInputs(root, tip))

	mesh, err := p.GenerateMesh(referenceResolution, false)
	refCount := 0
	if err == nil {
		refCount = len(mesh.Vertices) / 3
	}

	config.Set(baseCfg)
	return &FitnessEvaluator{params: params, baseCfg: baseCfg, referenceVertexCount: refCount}
}

func mouldInputs(root, tip skeleton.JointID) []mould.Mould {
	return []mould.Mould{
		{
			ID:      1,
			Shape:   mould.ShapeProfiledCapsule,
			JointID: &root,
			LocalA:  vecmath.Vec3{},
			LocalB:  &vecmath.Vec3{Y: 1},
			Rings: []sdf.RingProfile{
				{Radii: []float64{0.15, 0.1, 0.15, 0.1}},
				{Radii: []float64{0.25, 0.3, 0.25, 0.3}},
				{Radii: []float64{0.1, 0.1, 0.1, 0.1}},
			},
			BlendRadius: 0.1,
		},
		{
			ID:          2,
			Shape:       mould.ShapeSphere,
			JointID:     &tip,
			LocalA:      vecmath.Vec3{},
			Radius:      0.3,
			BlendRadius: 0.1,
		},
	}
}

// Evaluate scores candidate parameter values (raw, not normalized):
// lower is better. The score balances two pressures the teacher's own
// fitness function balances in the same shape (a primary outcome term
// plus a secondary quality term, see original cmd/optimize/fitness.go):
// fewer allocated bricks (cheaper), penalized by how much vertex count
// deviates from the dense reference (missed or spurious surface).
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	cfg := *e.baseCfg
	e.params.ApplyToConfig(&cfg, raw)
	config.Set(&cfg)
	defer config.Set(e.baseCfg)

	p := pipeline.New()
	root := skeleton.JointID(1)
	tip := skeleton.JointID(2)
	_ = p.UpdateSkeleton([]pipeline.JointInput{
		{ID: root, Position: vecmath.Vec3{}, Rotation: vecmath.Identity},
		{ID: tip, Parent: &root, Position: vecmath.Vec3{Y: 1}, Rotation: vecmath.Identity},
	})
	_ = p.UpdateMoulds(mouldInputs(root, tip))

	mesh, err := p.GenerateMesh(brickResolution, false)
	if err != nil {
		return 1e9
	}

	vertexCount := len(mesh.Vertices) / 3
	deviation := vertexCount - e.referenceVertexCount
	if deviation < 0 {
		deviation = -deviation
	}

	brickCost := float64(vertexCount) // proxy: brick map vertex density tracks brick count
	return float64(deviation)*10 + brickCost*0.01
}
