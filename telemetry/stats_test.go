package telemetry

import "testing"

func TestGenerationStatsToCSV(t *testing.T) {
	s := GenerationStats{
		Resolution:      64,
		FastMode:        true,
		Path:            StorageBrick,
		Update:          UpdateIncremental,
		AllocatedBricks: 12,
		SurfaceCells:    340,
		VertexCount:     340,
		TriangleCount:   680,
	}
	csv := s.ToCSV()
	if csv.Resolution != 64 || csv.Path != "brick" || csv.Update != "incremental" {
		t.Errorf("unexpected CSV projection: %+v", csv)
	}
}
