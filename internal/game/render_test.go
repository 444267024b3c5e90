package game

import (
	"errors"
	"strings"
	"testing"
)

type fakeRenderer struct {
	bodies        int
	boundaries    int
	failBodyAt    int // 1-based; 0 never fails
	failBoundary  bool
	drawnBodies   map[BodyHandle]Transform
	drawnBoundary []BoundaryHandle
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{drawnBodies: make(map[BodyHandle]Transform)}
}

func (f *fakeRenderer) CreateBody(center Vec3, radius float64, color Color) (BodyHandle, error) {
	f.bodies++
	if f.bodies == f.failBodyAt {
		return 0, errors.New("out of meshes")
	}
	return BodyHandle(100 + f.bodies), nil
}

func (f *fakeRenderer) CreateBoundary(origin Vec3, width, depth, height float64, color Color) (BoundaryHandle, error) {
	if f.failBoundary {
		return 0, errors.New("device lost")
	}
	f.boundaries++
	return BoundaryHandle(f.boundaries), nil
}

func (f *fakeRenderer) RenderBody(h BodyHandle, world Transform) {
	f.drawnBodies[h] = world
}

func (f *fakeRenderer) RenderBoundary(h BoundaryHandle, world Transform) {
	f.drawnBoundary = append(f.drawnBoundary, h)
}

func TestNewSceneCreatesEveryResource(t *testing.T) {
	r := newFakeRenderer()
	if _, err := NewScene(r, NewStandardSimulation()); err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if r.bodies != NumTargets+3 {
		t.Errorf("created %d bodies, want %d", r.bodies, NumTargets+3)
	}
	if r.boundaries != 5 {
		t.Errorf("created %d boundaries, want 5", r.boundaries)
	}
}

func TestNewSceneAbortsOnBodyFailure(t *testing.T) {
	r := newFakeRenderer()
	r.failBodyAt = 3

	_, err := NewScene(r, NewStandardSimulation())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "out of meshes") || !strings.Contains(err.Error(), "body 2") {
		t.Errorf("error = %v", err)
	}
	if r.bodies != 3 {
		t.Errorf("kept creating after failure: %d bodies", r.bodies)
	}
}

func TestNewSceneAbortsOnBoundaryFailure(t *testing.T) {
	r := newFakeRenderer()
	r.failBoundary = true
	if _, err := NewScene(r, NewStandardSimulation()); err == nil {
		t.Fatal("expected error")
	}
	if r.bodies != 0 {
		t.Errorf("bodies created after boundary failure: %d", r.bodies)
	}
}

func TestSceneFrameSkipsRemovedBodies(t *testing.T) {
	r := newFakeRenderer()
	sim := NewStandardSimulation()
	sc, err := NewScene(r, sim)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	sim.Shoot()
	sc.Frame(0.016)

	if len(r.drawnBoundary) != 5 {
		t.Errorf("drew %d boundaries, want 5", len(r.drawnBoundary))
	}
	if len(r.drawnBodies) != NumTargets+2 {
		t.Errorf("drew %d bodies, want %d (aim marker is parked)", len(r.drawnBodies), NumTargets+2)
	}
	active := sc.bodies[sim.Active.ID]
	if got := r.drawnBodies[active]; got != sim.Active.Transform {
		t.Errorf("active ball drawn at %v, want %v", got.Position(), sim.Active.Center())
	}
}
