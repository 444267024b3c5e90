// Command billiard opens a desktop window on a local table.
//
// Right-drag moves the aim marker, left-drag the aim reference, Space
// shoots and R racks a new round.
package main

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/game"
)

func main() {
	cfg := config.Load()

	rl.InitWindow(int32(cfg.WindowWidth), int32(cfg.WindowHeight), "Billiards")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.TickRateHz))

	sim := game.NewStandardSimulation()
	scene, err := game.NewScene(newRaylibRenderer(), sim)
	if err != nil {
		log.Fatalf("[VIEWER] Table setup failed: %v", err)
	}

	camera := rl.Camera3D{
		Position:   rl.NewVector3(0, 8, -11),
		Target:     rl.NewVector3(0, 0, 0.5),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	phase := sim.Phase
	for !rl.WindowShouldClose() {
		handleInput(sim)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		rl.BeginMode3D(camera)
		scene.Frame(float64(rl.GetFrameTime()))
		rl.EndMode3D()
		drawHUD(sim)
		rl.EndDrawing()

		if sim.Phase != phase {
			if sim.Phase.Terminal() {
				r := sim.Result()
				log.Printf("[VIEWER] Round %d %s: %d/%d potted in %s", r.Round, r.Outcome, r.PotCount, game.NumTargets, r.Duration)
			}
			phase = sim.Phase
		}
	}
}

// handleInput turns this frame's mouse and keyboard state into simulation
// input. Drags report previous minus current pointer x.
func handleInput(sim *game.Simulation) {
	var buttons game.ButtonMask
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		buttons |= game.ButtonLeft
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		buttons |= game.ButtonRight
	}
	if delta := rl.GetMouseDelta(); buttons != 0 && (delta.X != 0 || delta.Y != 0) {
		sim.Drag(buttons, -float64(delta.X), -float64(delta.Y))
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		sim.Shoot()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		sim.Reset()
	}
}

func drawHUD(sim *game.Simulation) {
	status := fmt.Sprintf("Round %d   Potted %d/%d   %s", sim.Round, sim.PotCount, game.NumTargets, sim.Phase)
	rl.DrawText(status, 10, 10, 20, rl.DarkGray)

	var hint string
	switch {
	case sim.Phase == game.PhaseWon:
		hint = "Table cleared! Press R for a new round"
	case sim.Phase == game.PhaseLost:
		hint = "Off the table. Press R to try again"
	case sim.Latch == game.LatchFired:
		hint = "Left-drag the blue paddle to keep the ball in play"
	default:
		hint = "Right-drag to aim, Space to shoot"
	}
	rl.DrawText(hint, 10, 36, 18, rl.Gray)
}
