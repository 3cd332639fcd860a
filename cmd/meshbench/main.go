// Benchmark tool: sweeps resolution and fast/quality mode, recording
// per-call timing stats to CSV.
//
// Usage: go run ./cmd/meshbench -output results/
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/pipeline"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/telemetry"
	"github.com/pthm-cable/moulded/vecmath"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for CSV results (empty = stdout only)")
	minRes := flag.Int("min-resolution", 16, "Smallest resolution to benchmark")
	maxRes := flag.Int("max-resolution", 192, "Largest resolution to benchmark")
	step := flag.Int("step", 16, "Resolution step")
	repeats := flag.Int("repeats", 5, "Repeats per resolution/mode, to warm the perf sampler window")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output manager: %v", err)
	}
	defer om.Close()
	if err := om.WriteConfig(config.Cfg()); err != nil {
		log.Printf("failed to write config snapshot: %v", err)
	}

	p := pipeline.New()
	setupBenchScene(p)

	for _, fastMode := range []bool{true, false} {
		for res := *minRes; res <= *maxRes; res += *step {
			var lastErr error
			for i := 0; i < *repeats; i++ {
				if _, err := p.GenerateMesh(uint32(res), fastMode); err != nil {
					lastErr = err
					break
				}
			}
			if lastErr != nil {
				log.Printf("resolution %d fast=%v: %v", res, fastMode, lastErr)
				continue
			}

			stats := p.PerfStats()
			if err := om.WritePerf(stats); err != nil {
				log.Printf("failed to write perf stats: %v", err)
			}
			fmt.Printf("resolution=%-4d fast=%-5v avg=%v calls/sec=%.1f\n",
				res, fastMode, stats.AvgDuration, stats.CallsPerSec)
		}
	}

	if dir := om.Dir(); dir != "" {
		fmt.Printf("\nResults written to %s\n", dir)
	}
}

// setupBenchScene builds a small fixed skeleton/mould-set benchmark
// target: a spine of three bones, each wrapped in a profiled capsule,
// plus one sphere mould on the terminal joint — enough joints and shapes to exercise
// both the dense and brick storage paths realistically.
func setupBenchScene(p *pipeline.Pipeline) {
	joints := make([]pipeline.JointInput, 0, 4)
	var prev *skeleton.JointID
	for i := skeleton.JointID(1); i <= 4; i++ {
		parent := prev
		joints = append(joints, pipeline.JointInput{
			ID:       i,
			Parent:   parent,
			Position: vecmath.Vec3{Y: 0.4},
			Rotation: vecmath.Identity,
		})
		id := i
		prev = &id
	}
	if err := p.UpdateSkeleton(joints); err != nil {
		log.Fatalf("setupBenchScene: %v", err)
	}

	moulds := make([]pipeline.MouldInput, 0, 4)
	for i := skeleton.JointID(1); i <= 3; i++ {
		id := i
		moulds = append(moulds, mould.Mould{
			ID:      mould.ID(i),
			Shape:   mould.ShapeProfiledCapsule,
			JointID: &id,
			LocalB:  &vecmath.Vec3{Y: 0.4},
			Rings: []sdf.RingProfile{
				{Radii: []float64{0.12, 0.12, 0.12, 0.12}},
				{Radii: []float64{0.18, 0.2, 0.18, 0.2}},
			},
			BlendRadius: 0.1,
		})
	}
	tip := skeleton.JointID(4)
	moulds = append(moulds, mould.Mould{
		ID:          mould.ID(10),
		Shape:       mould.ShapeSphere,
		JointID:     &tip,
		Radius:      0.25,
		BlendRadius: 0.1,
	})

	if err := p.UpdateMoulds(moulds); err != nil {
		log.Fatalf("setupBenchScene: %v", err)
	}
}
