package game

import "fmt"

// BodyHandle and BoundaryHandle are opaque renderer resources.
type BodyHandle int
type BoundaryHandle int

// Renderer is the drawing side of the table: it owns meshes and materials
// and is told where things are once per frame.
type Renderer interface {
	CreateBody(center Vec3, radius float64, color Color) (BodyHandle, error)
	CreateBoundary(origin Vec3, width, depth, height float64, color Color) (BoundaryHandle, error)
	RenderBody(h BodyHandle, world Transform)
	RenderBoundary(h BoundaryHandle, world Transform)
}

// Scene binds a simulation to a renderer.
type Scene struct {
	Sim      *Simulation
	renderer Renderer
	bodies   map[int]BodyHandle
	plane    BoundaryHandle
	walls    [4]BoundaryHandle
	wallXf   [5]Transform
}

// NewScene creates every renderer resource up front. Any failure aborts the
// setup; nothing is retried.
func NewScene(r Renderer, sim *Simulation) (*Scene, error) {
	sc := &Scene{
		Sim:      sim,
		renderer: r,
		bodies:   make(map[int]BodyHandle),
	}

	l := sim.Layout
	var err error
	if sc.plane, err = r.CreateBoundary(l.Plane.Origin, l.Plane.Width, l.Plane.Depth, l.Plane.Height, l.Plane.Color); err != nil {
		return nil, fmt.Errorf("create %s: %w", l.Plane.Name, err)
	}
	sc.wallXf[0] = Translation(l.Plane.Origin)

	for i, w := range l.Walls {
		if sc.walls[i], err = r.CreateBoundary(w.Origin, w.Width, w.Depth, w.Height, w.Color); err != nil {
			return nil, fmt.Errorf("create %s wall: %w", w.Name, err)
		}
		sc.wallXf[i+1] = Translation(w.Origin)
	}

	for _, b := range sim.Bodies() {
		h, err := r.CreateBody(b.Center(), b.Radius, b.Color)
		if err != nil {
			return nil, fmt.Errorf("create body %d (%s): %w", b.ID, b.Role, err)
		}
		sc.bodies[b.ID] = h
	}
	return sc, nil
}

// Frame advances the simulation by dt and then draws the table. Physics
// always completes before anything is rendered.
func (sc *Scene) Frame(dt float64) []BodyFrame {
	frames := sc.Sim.Update(dt)
	sc.Render(frames)
	return frames
}

// Render draws the table and every body still in play.
func (sc *Scene) Render(frames []BodyFrame) {
	sc.renderer.RenderBoundary(sc.plane, sc.wallXf[0])
	for i, h := range sc.walls {
		sc.renderer.RenderBoundary(h, sc.wallXf[i+1])
	}
	for _, f := range frames {
		if !f.InPlay {
			continue
		}
		if h, ok := sc.bodies[f.ID]; ok {
			sc.renderer.RenderBody(h, f.Transform)
		}
	}
}
