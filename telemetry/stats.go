// Package telemetry provides structured logging of mesh generation runs,
// a rolling per-phase timer, and the snapshot request/reply shape the
// host boundary uses to ask the pipeline for a debug dump.
package telemetry

import (
	"log/slog"
	"time"
)

// StoragePath names which voxel storage backend a generation run used.
type StoragePath string

const (
	StorageDense StoragePath = "dense"
	StorageBrick StoragePath = "brick"
)

// UpdateKind names how the brick path refreshed its voxels.
type UpdateKind string

const (
	UpdateRebuild     UpdateKind = "rebuild"
	UpdateIncremental UpdateKind = "incremental"
	UpdateReused      UpdateKind = "reused"
)

// GenerationStats describes one generate_mesh call, logged via slog as a
// single structured record.
type GenerationStats struct {
	Resolution     uint32
	FastMode       bool
	Path           StoragePath
	Update         UpdateKind
	AllocatedBricks int
	SurfaceCells   int
	VertexCount    int
	TriangleCount  int
	Duration       time.Duration
}

// LogValue implements slog.LogValuer.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("resolution", int(s.Resolution)),
		slog.Bool("fast_mode", s.FastMode),
		slog.String("path", string(s.Path)),
		slog.String("update", string(s.Update)),
		slog.Int("allocated_bricks", s.AllocatedBricks),
		slog.Int("surface_cells", s.SurfaceCells),
		slog.Int("vertex_count", s.VertexCount),
		slog.Int("triangle_count", s.TriangleCount),
		slog.Int64("duration_us", s.Duration.Microseconds()),
	)
}

// Log emits the generation stats at info level.
func (s GenerationStats) Log() {
	slog.Info("generate_mesh", "stats", s)
}
