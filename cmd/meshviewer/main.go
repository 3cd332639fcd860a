// Mesh viewer - interactive 3D preview of generate_mesh output with
// sliders for resolution, joint rotation and mould radius.
//
// Usage: go run ./cmd/meshviewer
// Usage (headless, single screenshot): go run ./cmd/meshviewer -headless -out preview.png
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/moulded/config"
	"github.com/pthm-cable/moulded/mould"
	"github.com/pthm-cable/moulded/pipeline"
	"github.com/pthm-cable/moulded/sdf"
	"github.com/pthm-cable/moulded/skeleton"
	"github.com/pthm-cable/moulded/vecmath"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	panelWidth   = 260
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render a single frame and exit")
	outPath := flag.String("out", "preview.png", "Screenshot path (headless mode)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *headless {
		rl.SetConfigFlags(rl.FlagWindowHidden)
	}
	rl.InitWindow(windowWidth, windowHeight, "Mesh Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	camera := rl.Camera3D{
		Position:   rl.Vector3{X: 2.5, Y: 2, Z: 2.5},
		Target:     rl.Vector3{X: 0, Y: 0.5, Z: 0},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	p := pipeline.New()
	v := &viewerState{
		resolution: 48,
		fastMode:   true,
		bendAngle:  0,
		radius:     0.25,
	}
	applyScene(p, v)
	model := regenerateModel(p, v)
	defer rl.UnloadModel(model)

	for !rl.WindowShouldClose() {
		if !*headless {
			rl.UpdateCamera(&camera, rl.CameraOrbital)
		}

		if v.dirty {
			rl.UnloadModel(model)
			applyScene(p, v)
			model = regenerateModel(p, v)
			v.dirty = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginMode3D(camera)
		rl.DrawModel(model, rl.Vector3{}, 1.0, rl.Gray)
		rl.DrawModelWires(model, rl.Vector3{}, 1.0, rl.DarkGray)
		rl.DrawGrid(10, 0.2)
		rl.EndMode3D()

		drawPanel(v)

		rl.DrawFPS(windowWidth-100, 10)
		rl.EndDrawing()

		if *headless {
			img := rl.LoadImageFromScreen()
			rl.ExportImage(*img, *outPath)
			rl.UnloadImage(img)
			fmt.Printf("mesh preview written to %s\n", *outPath)
			return
		}
	}
}

// viewerState holds the slider-driven parameters controlling the next
// regenerated mesh.
type viewerState struct {
	resolution int32
	fastMode   bool
	bendAngle  float32 // radians, rotates the middle joint
	radius     float32
	dirty      bool
}

func applyScene(p *pipeline.Pipeline, v *viewerState) {
	root := skeleton.JointID(1)
	mid := skeleton.JointID(2)
	tip := skeleton.JointID(3)

	bend := quatAroundX(v.bendAngle)

	_ = p.UpdateSkeleton([]pipeline.JointInput{
		{ID: root, Position: vecmath.Vec3{}, Rotation: vecmath.Identity},
		{ID: mid, Parent: &root, Position: vecmath.Vec3{Y: 0.6}, Rotation: bend},
		{ID: tip, Parent: &mid, Position: vecmath.Vec3{Y: 0.6}, Rotation: vecmath.Identity},
	})

	_ = p.UpdateMoulds([]pipeline.MouldInput{
		{
			ID:      1,
			Shape:   mould.ShapeProfiledCapsule,
			JointID: &root,
			LocalB:  &vecmath.Vec3{Y: 0.6},
			Rings: []sdf.RingProfile{
				{Radii: []float64{float64(v.radius), float64(v.radius), float64(v.radius), float64(v.radius)}},
				{Radii: []float64{float64(v.radius) * 1.2, float64(v.radius) * 1.2, float64(v.radius) * 1.2, float64(v.radius) * 1.2}},
			},
			BlendRadius: 0.1,
		},
		{
			ID:      2,
			Shape:   mould.ShapeProfiledCapsule,
			JointID: &mid,
			LocalB:  &vecmath.Vec3{Y: 0.6},
			Rings: []sdf.RingProfile{
				{Radii: []float64{float64(v.radius) * 1.2, float64(v.radius) * 1.2, float64(v.radius) * 1.2, float64(v.radius) * 1.2}},
				{Radii: []float64{float64(v.radius) * 0.6, float64(v.radius) * 0.6, float64(v.radius) * 0.6, float64(v.radius) * 0.6}},
			},
			BlendRadius: 0.1,
		},
		{
			ID:          3,
			Shape:       mould.ShapeSphere,
			JointID:     &tip,
			Radius:      float64(v.radius) * 0.7,
			BlendRadius: 0.08,
		},
	})
}

func quatAroundX(angle float32) vecmath.Quat {
	half := float64(angle) / 2
	return vecmath.Quat{Real: math.Cos(half), Imag: math.Sin(half)}
}

// regenerateModel runs generate_mesh and uploads the result as a raylib
// model, discarding any previously uploaded GPU mesh the caller already
// freed via rl.UnloadModel.
func regenerateModel(p *pipeline.Pipeline, v *viewerState) rl.Model {
	mesh, err := p.GenerateMesh(uint32(v.resolution), v.fastMode)
	if err != nil || len(mesh.Vertices) == 0 {
		return rl.LoadModelFromMesh(rl.GenMeshCube(0.01, 0.01, 0.01))
	}

	// raylib's Mesh.Indices is uint16; fine for this viewer's resolution
	// range, but the wire protocol itself stays uint32 for larger grids.
	indices := make([]uint16, len(mesh.Indices))
	for i, idx := range mesh.Indices {
		indices[i] = uint16(idx)
	}

	rlMesh := rl.Mesh{
		VertexCount:   int32(len(mesh.Vertices) / 3),
		TriangleCount: int32(len(mesh.Indices) / 3),
		Vertices:      mesh.Vertices,
		Normals:       mesh.Normals,
		Indices:       indices,
	}
	rl.UploadMesh(&rlMesh, false)
	return rl.LoadModelFromMesh(rlMesh)
}

func drawPanel(v *viewerState) {
	x := float32(windowWidth - panelWidth - 10)
	y := float32(10)

	rl.DrawRectangle(int32(x)-10, int32(y)-10, panelWidth+20, 260, rl.Fade(rl.White, 0.85))
	rl.DrawText("Mesh Parameters", int32(x), int32(y), 18, rl.DarkGray)
	y += 30

	rl.DrawText(fmt.Sprintf("Resolution: %d", v.resolution), int32(x), int32(y), 14, rl.Gray)
	y += 16
	newRes := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 20, Height: 20}, "16", "192", float32(v.resolution), 16, 192)
	if int32(newRes) != v.resolution {
		v.resolution = int32(newRes)
		v.dirty = true
	}
	y += 35

	rl.DrawText(fmt.Sprintf("Bend: %.2f rad", v.bendAngle), int32(x), int32(y), 14, rl.Gray)
	y += 16
	newBend := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 20, Height: 20}, "-1.5", "1.5", v.bendAngle, -1.5, 1.5)
	if newBend != v.bendAngle {
		v.bendAngle = newBend
		v.dirty = true
	}
	y += 35

	rl.DrawText(fmt.Sprintf("Radius: %.2f", v.radius), int32(x), int32(y), 14, rl.Gray)
	y += 16
	newRadius := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 20, Height: 20}, "0.05", "0.5", v.radius, 0.05, 0.5)
	if newRadius != v.radius {
		v.radius = newRadius
		v.dirty = true
	}
	y += 40

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: panelWidth - 20, Height: 28}, toggleText(v.fastMode, "Mode: Fast", "Mode: Quality")) {
		v.fastMode = !v.fastMode
		v.dirty = true
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
