package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/moulded/config"
)

// GenerationStatsCSV is a flat, CSV-friendly projection of GenerationStats.
type GenerationStatsCSV struct {
	Resolution      uint32  `csv:"resolution"`
	FastMode        bool    `csv:"fast_mode"`
	Path            string  `csv:"path"`
	Update          string  `csv:"update"`
	AllocatedBricks int     `csv:"allocated_bricks"`
	SurfaceCells    int     `csv:"surface_cells"`
	VertexCount     int     `csv:"vertex_count"`
	TriangleCount   int     `csv:"triangle_count"`
	DurationUS      int64   `csv:"duration_us"`
}

// ToCSV converts GenerationStats to its flat CSV form.
func (s GenerationStats) ToCSV() GenerationStatsCSV {
	return GenerationStatsCSV{
		Resolution:      s.Resolution,
		FastMode:        s.FastMode,
		Path:            string(s.Path),
		Update:          string(s.Update),
		AllocatedBricks: s.AllocatedBricks,
		SurfaceCells:    s.SurfaceCells,
		VertexCount:     s.VertexCount,
		TriangleCount:   s.TriangleCount,
		DurationUS:      s.Duration.Microseconds(),
	}
}

// PerfStatsCSV is a flat, CSV-friendly projection of PerfStats.
type PerfStatsCSV struct {
	AvgUS             int64   `csv:"avg_us"`
	MinUS             int64   `csv:"min_us"`
	MaxUS             int64   `csv:"max_us"`
	CallsPerSec       float64 `csv:"calls_per_sec"`
	TransformCachePct float64 `csv:"transform_cache_pct"`
	GridBuildPct      float64 `csv:"grid_build_pct"`
	ExtractPct        float64 `csv:"extract_pct"`
	EncodePct         float64 `csv:"encode_pct"`
}

// ToCSV converts PerfStats to its flat CSV form.
func (s PerfStats) ToCSV() PerfStatsCSV {
	return PerfStatsCSV{
		AvgUS:             s.AvgDuration.Microseconds(),
		MinUS:             s.MinDuration.Microseconds(),
		MaxUS:             s.MaxDuration.Microseconds(),
		CallsPerSec:       s.CallsPerSec,
		TransformCachePct: s.PhasePct[PhaseTransformCache],
		GridBuildPct:      s.PhasePct[PhaseGridBuild],
		ExtractPct:        s.PhasePct[PhaseExtract],
		EncodePct:         s.PhasePct[PhaseEncode],
	}
}

// OutputManager handles CSV export of benchmark/calibration runs.
type OutputManager struct {
	dir                string
	statsFile          *os.File
	perfFile           *os.File
	statsHeaderWritten bool
	perfHeaderWritten  bool
}

// NewOutputManager creates an output manager rooted at dir. Returns nil
// if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "generation_stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generation_stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.statsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGenerationStats appends one generation_stats.csv record.
func (om *OutputManager) WriteGenerationStats(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	records := []GenerationStatsCSV{stats.ToCSV()}
	return om.writeCSV(om.statsFile, &om.statsHeaderWritten, records)
}

// WritePerf appends one perf.csv record.
func (om *OutputManager) WritePerf(stats PerfStats) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV()}
	return om.writeCSV(om.perfFile, &om.perfHeaderWritten, records)
}

func (om *OutputManager) writeCSV(f *os.File, headerWritten *bool, records any) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		*headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, f); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if om.statsFile != nil {
		if err := om.statsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
