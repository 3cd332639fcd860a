package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one generate_mesh call.
const (
	PhaseTransformCache = "transform_cache"
	PhaseGridBuild      = "grid_build"
	PhaseExtract        = "extract"
	PhaseEncode         = "encode"
)

// PerfSample holds timing data for a single generate_mesh call.
type PerfSample struct {
	TotalDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfSampler tracks generation performance over a rolling window of
// recent calls.
type PerfSampler struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	callStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfSampler creates a sampler averaging over the last windowSize
// calls.
func NewPerfSampler(windowSize int) *PerfSampler {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfSampler{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartCall begins timing a new generate_mesh call.
func (p *PerfSampler) StartCall() {
	p.callStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a named phase, closing out whichever phase
// was previously open.
func (p *PerfSampler) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndCall finishes timing the current call and records the sample.
func (p *PerfSampler) EndCall() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TotalDuration: now.Sub(p.callStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics over the sampler's
// window.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
	PhaseAvg    map[string]time.Duration
	PhasePct    map[string]float64
	CallsPerSec float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfSampler) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{PhaseAvg: map[string]time.Duration{}, PhasePct: map[string]float64{}}
	}

	var total, min, max time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TotalDuration
		if i == 0 || s.TotalDuration < min {
			min = s.TotalDuration
		}
		if s.TotalDuration > max {
			max = s.TotalDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgDuration: avg,
		MinDuration: min,
		MaxDuration: max,
		PhaseAvg:    phaseAvg,
		PhasePct:    phasePct,
		CallsPerSec: perSec,
	}
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_us", s.AvgDuration.Microseconds()),
		slog.Int64("min_us", s.MinDuration.Microseconds()),
		slog.Int64("max_us", s.MaxDuration.Microseconds()),
		slog.Float64("calls_per_sec", s.CallsPerSec),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}
