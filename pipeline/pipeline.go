// Package pipeline coordinates the skeleton, mould set, voxel storage
// and dual contouring extractor into the three calls a host makes:
// update_skeleton, update_moulds, and generate_mesh. It holds the
// process-wide mutable state spec.md's design calls for: a single
// mutex-guarded instance the host is expected to keep exactly one of.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pthm-cable/moulded/brick"
	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/contour"
	"github.com/pthm-cable/moulded/grid"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/telemetry"
	"github.com/pthm-cable/moulded/vecmath"
)

// ErrUninitialized is returned by GenerateMesh when neither
// UpdateSkeleton nor UpdateMoulds has ever been called.
var ErrUninitialized = errors.New("pipeline: uninitialized, call UpdateSkeleton/UpdateMoulds first")

// ErrInvalidInput wraps a caller input that failed validation.
type ErrInvalidInput struct{ Reason string }

func (e *ErrInvalidInput) Error() string { return "pipeline: invalid input: " + e.Reason }

// Bounds is the fixed world-space region generate_mesh always extracts
// within, regardless of resolution or where the moulds actually sit.
var Bounds = vecmath.AABB{
	Min: vecmath.Vec3{X: -1, Y: -1, Z: -1},
	Max: vecmath.Vec3{X: 1, Y: 1.5, Z: 1},
}

// Mesh is the wire-ready extracted surface: interleaved float32
// position/normal triplets and a flat uint32 triangle index list.
type Mesh struct {
	Vertices []float32 // x,y,z interleaved
	Normals  []float32 // x,y,z interleaved
	Indices  []uint32
}

// JointInput describes one joint update, using nil Parent for a root
// joint.
type JointInput struct {
	ID       skeleton.JointID
	Parent   *skeleton.JointID
	Position vecmath.Vec3
	Rotation vecmath.Quat
}

// MouldInput describes one mould update.
type MouldInput = mould.Mould

// Pipeline is the full coordinator. Zero value is not usable; use New.
type Pipeline struct {
	mu sync.Mutex

	initialized bool
	sk          *skeleton.Skeleton
	moulds      *mould.Set

	// snapshots taken after the last successful GenerateMesh call, used
	// to compute the dirty region for the next one.
	lastSk     *skeleton.Skeleton
	lastMoulds *mould.Set

	denseRes uint32
	dense    *grid.Dense
	brickRes uint32
	bricks   *brick.Map

	perf      *telemetry.PerfSampler
	snapshots *telemetry.SnapshotBroker
}

// New returns an empty, ready-to-use pipeline.
func New() *Pipeline {
	return &Pipeline{
		sk:     skeleton.New(),
		moulds: mould.NewSet(),
		perf:   telemetry.NewPerfSampler(32),
	}
}

// UpdateSkeleton replaces the current skeleton's joints wholesale.
func (p *Pipeline) UpdateSkeleton(joints []JointInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Parent references are resolved lazily by Skeleton itself, so
	// joints may arrive in any order; a genuinely missing parent
	// surfaces the first time the skeleton's transforms are read.
	next := skeleton.New()
	for _, j := range joints {
		next.AddJoint(skeleton.Joint{
			ID:     j.ID,
			Parent: j.Parent,
			Local:  vecmath.Transform{Translation: j.Position, Rotation: j.Rotation},
		})
	}

	p.sk = next
	p.initialized = true
	return nil
}

// UpdateMoulds replaces the current mould set wholesale.
func (p *Pipeline) UpdateMoulds(moulds []MouldInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, m := range moulds {
		if err := m.Validate(); err != nil {
			return &ErrInvalidInput{Reason: err.Error()}
		}
	}

	next := mould.NewSet()
	for _, m := range moulds {
		next.Put(m)
	}
	p.moulds = next
	p.initialized = true
	return nil
}

// GenerateMesh extracts a triangle mesh from the current skeleton and
// mould set. resolution of 0 uses config's default_resolution;
// fastMode selects cell-center vertex placement over the QEF/Newton
// solve.
func (p *Pipeline) GenerateMesh(resolution uint32, fastMode bool) (Mesh, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return Mesh{}, ErrUninitialized
	}

	cfg := config.Cfg()
	if resolution == 0 {
		resolution = cfg.Generate.DefaultResolution
	}
	if resolution < 2 {
		return Mesh{}, &ErrInvalidInput{Reason: fmt.Sprintf("resolution %d must be >= 2", resolution)}
	}
	if resolution >= cfg.Storage.BrickResolutionThreshold && resolution%brick.Size != 0 {
		return Mesh{}, &ErrInvalidInput{Reason: fmt.Sprintf("resolution %d is not divisible by brick edge %d", resolution, brick.Size)}
	}

	start := time.Now()
	p.perf.StartCall()
	defer p.perf.EndCall()

	p.perf.StartPhase(telemetry.PhaseTransformCache)
	if err := p.moulds.RebuildCache(p.sk); err != nil {
		return Mesh{}, fmt.Errorf("pipeline: rebuilding mould transforms: %w", err)
	}
	field := p.moulds.Field()

	p.perf.StartPhase(telemetry.PhaseGridBuild)
	var (
		g          grid.Grid
		path       telemetry.StoragePath
		updateKind telemetry.UpdateKind
		brickCount int
	)

	if resolution < cfg.Storage.BrickResolutionThreshold {
		path = telemetry.StorageDense
		if p.dense == nil || p.denseRes != resolution {
			p.dense = grid.NewDense(resolution, Bounds)
			p.denseRes = resolution
		}
		p.dense.Evaluate(field)
		g = p.dense
		updateKind = telemetry.UpdateRebuild
	} else {
		path = telemetry.StorageBrick
		rebuild := p.bricks == nil || p.brickRes != resolution
		if rebuild {
			p.bricks = brick.New(resolution, Bounds)
			p.brickRes = resolution
			p.bricks.AllocateSurfaceBricks(field)
			updateKind = telemetry.UpdateRebuild
		} else {
			dirty, any, err := p.dirtyBounds()
			if err != nil {
				return Mesh{}, fmt.Errorf("pipeline: computing dirty bounds: %w", err)
			}
			if any {
				p.bricks.UpdateSurfaceBricksInBounds(field, dirty)
				updateKind = telemetry.UpdateIncremental
			} else {
				updateKind = telemetry.UpdateReused
			}
		}
		g = p.bricks
		brickCount = p.bricks.BrickCount()
	}

	p.perf.StartPhase(telemetry.PhaseExtract)
	extracted := contour.Extract(g, field, fastMode)

	p.perf.StartPhase(telemetry.PhaseEncode)
	out := toWireMesh(extracted)

	p.lastSk = p.sk.Clone()
	p.lastMoulds = p.moulds.Clone()

	stats := telemetry.GenerationStats{
		Resolution:      resolution,
		FastMode:        fastMode,
		Path:            path,
		Update:          updateKind,
		AllocatedBricks: brickCount,
		SurfaceCells:    len(extracted.Vertices),
		VertexCount:     len(extracted.Vertices),
		TriangleCount:   len(extracted.Indices) / 3,
		Duration:        time.Since(start),
	}
	stats.Log()

	return out, nil
}

// dirtyBounds computes the world AABB invalidated since the last
// successful generate_mesh call by comparing the current skeleton/mould
// set against the snapshot taken after that call.
func (p *Pipeline) dirtyBounds() (vecmath.AABB, bool, error) {
	if p.lastSk == nil || p.lastMoulds == nil {
		return vecmath.AABB{}, false, nil
	}
	movedList := skeleton.Moved(p.lastSk, p.sk)
	moved := make(map[skeleton.JointID]bool, len(movedList))
	for _, id := range movedList {
		moved[id] = true
	}
	return mould.DirtySetBounds(p.lastMoulds, p.moulds, p.lastSk, p.sk, moved)
}

func toWireMesh(m contour.Mesh) Mesh {
	verts := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		verts = append(verts, float32(v.X), float32(v.Y), float32(v.Z))
	}
	norms := make([]float32, 0, len(m.Normals)*3)
	for _, n := range m.Normals {
		norms = append(norms, float32(n.X), float32(n.Y), float32(n.Z))
	}
	idx := make([]uint32, len(m.Indices))
	copy(idx, m.Indices)
	return Mesh{Vertices: verts, Normals: norms, Indices: idx}
}

// PerfStats returns aggregated timing statistics over the pipeline's
// recent GenerateMesh calls.
func (p *Pipeline) PerfStats() telemetry.PerfStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perf.Stats()
}

// RequestSnapshot asks the pipeline's snapshot broker (if the host has
// wired one via SetSnapshotBroker) for a debug dump of the current
// state, blocking until it replies or ctx is done.
func (p *Pipeline) RequestSnapshot(ctx context.Context) (string, bool) {
	p.mu.Lock()
	broker := p.snapshots
	p.mu.Unlock()
	if broker == nil {
		return "", false
	}
	return broker.RequestSnapshot(ctx)
}

// SetSnapshotBroker wires a snapshot broker a host can use to request
// debug dumps; optional, nil by default.
func (p *Pipeline) SetSnapshotBroker(b *telemetry.SnapshotBroker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = b
}
