package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/playmatatu/billiards/internal/game"
)

type sphereMesh struct {
	radius float32
	color  rl.Color
}

type boxMesh struct {
	size  rl.Vector3
	color rl.Color
}

// raylibRenderer draws bodies as spheres and boundaries as boxes. Handles
// index into its mesh lists.
type raylibRenderer struct {
	spheres []sphereMesh
	boxes   []boxMesh
}

func newRaylibRenderer() *raylibRenderer {
	return &raylibRenderer{}
}

func toColor(c game.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func toVector3(p game.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}

func (r *raylibRenderer) CreateBody(center game.Vec3, radius float64, color game.Color) (game.BodyHandle, error) {
	if radius <= 0 {
		return 0, fmt.Errorf("sphere radius %v", radius)
	}
	r.spheres = append(r.spheres, sphereMesh{radius: float32(radius), color: toColor(color)})
	return game.BodyHandle(len(r.spheres) - 1), nil
}

func (r *raylibRenderer) CreateBoundary(origin game.Vec3, width, depth, height float64, color game.Color) (game.BoundaryHandle, error) {
	if width < 0 || depth < 0 || height < 0 {
		return 0, fmt.Errorf("box size %vx%vx%v", width, height, depth)
	}
	r.boxes = append(r.boxes, boxMesh{
		size:  rl.Vector3{X: float32(width), Y: float32(height), Z: float32(depth)},
		color: toColor(color),
	})
	return game.BoundaryHandle(len(r.boxes) - 1), nil
}

func (r *raylibRenderer) RenderBody(h game.BodyHandle, world game.Transform) {
	m := r.spheres[h]
	rl.DrawSphere(toVector3(world.Position()), m.radius, m.color)
}

func (r *raylibRenderer) RenderBoundary(h game.BoundaryHandle, world game.Transform) {
	m := r.boxes[h]
	rl.DrawCubeV(toVector3(world.Position()), m.size, m.color)
}
