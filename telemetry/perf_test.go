package telemetry

import (
	"testing"
	"time"
)

func TestPerfSamplerAveragesWindow(t *testing.T) {
	p := NewPerfSampler(4)
	for i := 0; i < 3; i++ {
		p.StartCall()
		p.StartPhase(PhaseGridBuild)
		time.Sleep(time.Millisecond)
		p.StartPhase(PhaseExtract)
		time.Sleep(time.Millisecond)
		p.EndCall()
	}
	stats := p.Stats()
	if stats.AvgDuration <= 0 {
		t.Error("expected a positive average duration")
	}
	if _, ok := stats.PhasePct[PhaseGridBuild]; !ok {
		t.Error("expected grid_build phase to be tracked")
	}
	if _, ok := stats.PhasePct[PhaseExtract]; !ok {
		t.Error("expected extract phase to be tracked")
	}
}

func TestPerfSamplerEmptyWindow(t *testing.T) {
	p := NewPerfSampler(4)
	stats := p.Stats()
	if stats.AvgDuration != 0 {
		t.Errorf("expected zero average with no samples, got %v", stats.AvgDuration)
	}
}
