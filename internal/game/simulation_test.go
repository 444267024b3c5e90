package game

import (
	"encoding/json"
	"math"
	"testing"

	"pgregory.net/rapid"
)

// placeTargetsAround parks n targets in contact with the active ball and
// the rest out of reach.
func placeTargetsAround(sim *Simulation, n int) {
	a := sim.Active.Position
	offsets := []Vec2{NewVec2(0.3, 0), NewVec2(-0.3, 0), NewVec2(0, 0.3), NewVec2(0, -0.3)}
	for i, tb := range sim.Targets {
		if !tb.InPlay {
			continue
		}
		if i < n {
			tb.SetCenter(a.Plus(offsets[i]), tb.Height)
		}
	}
}

func TestNewSimulationRoster(t *testing.T) {
	sim := NewStandardSimulation()

	if sim.Phase != PhaseAiming || sim.Latch != LatchIdle || sim.Round != 1 {
		t.Errorf("initial state = %s/%s round %d", sim.Phase, sim.Latch, sim.Round)
	}
	bodies := sim.Bodies()
	if len(bodies) != NumTargets+3 {
		t.Fatalf("roster has %d bodies, want %d", len(bodies), NumTargets+3)
	}
	for i, b := range bodies {
		if b.ID != i {
			t.Errorf("body %d has ID %d", i, b.ID)
		}
		if !b.InPlay {
			t.Errorf("body %d starts out of play", i)
		}
		if !b.Velocity.IsZero() {
			t.Errorf("body %d starts moving: %+v", i, b.Velocity)
		}
	}
	if sim.Active.Role != RoleActive || sim.AimReference.Role != RoleAimReference || sim.AimMarker.Role != RoleAimMarker {
		t.Error("roles assigned to the wrong bodies")
	}
	if Intersects(sim.Active, sim.AimReference) {
		t.Error("active ball starts in contact with the aim reference")
	}
}

func TestDragRightMovesAimMarkerAndArms(t *testing.T) {
	sim := NewStandardSimulation()
	z := sim.AimMarker.Position.Z

	if !sim.Drag(ButtonRight, 10, 3) {
		t.Fatal("drag rejected")
	}
	if math.Abs(sim.AimMarker.Position.X-(-0.1)) > 1e-12 {
		t.Errorf("marker x = %v, want -0.1", sim.AimMarker.Position.X)
	}
	if sim.AimMarker.Position.Z != z {
		t.Errorf("marker z moved to %v", sim.AimMarker.Position.Z)
	}
	if sim.Latch != LatchArmed {
		t.Errorf("latch = %s, want ARMED", sim.Latch)
	}
	if sim.AimReference.Position.X != 0 {
		t.Error("right drag moved the aim reference")
	}
}

func TestDragLeftMovesAimReference(t *testing.T) {
	sim := NewStandardSimulation()

	if !sim.Drag(ButtonLeft, -20, 0) {
		t.Fatal("drag rejected")
	}
	if math.Abs(sim.AimReference.Position.X-0.2) > 1e-12 {
		t.Errorf("aim reference x = %v, want 0.2", sim.AimReference.Position.X)
	}
	if sim.Latch != LatchIdle {
		t.Errorf("latch = %s, want IDLE", sim.Latch)
	}
	if sim.Drag(0, 5, 5) {
		t.Error("drag with no buttons should be ignored")
	}
}

func TestShootLaunchesTowardMarker(t *testing.T) {
	sim := NewStandardSimulation()
	d := sim.AimMarker.Position.Minus(sim.Active.Position)

	if !sim.Shoot() {
		t.Fatal("first shot rejected")
	}

	want := d.Times(LaunchScale)
	if math.Abs(sim.Active.Velocity.X-want.X) > 1e-9 || math.Abs(sim.Active.Velocity.Z-want.Z) > 1e-9 {
		t.Errorf("velocity = %+v, want %+v", sim.Active.Velocity, want)
	}
	if sim.AimMarker.InPlay || !sim.AimMarker.Position.IsEqualTo(Sentinel) || sim.AimMarker.Height != 0 {
		t.Errorf("aim marker not parked: %+v", sim.AimMarker)
	}
	if sim.Latch != LatchFired || sim.Phase != PhaseMoving || sim.Shots != 1 {
		t.Errorf("after shot: latch=%s phase=%s shots=%d", sim.Latch, sim.Phase, sim.Shots)
	}
}

func TestShootFiresOncePerRound(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Drag(ButtonRight, -50, 0)
	sim.Shoot()
	v := sim.Active.Velocity

	if sim.Shoot() {
		t.Error("second shot accepted")
	}
	if !sim.Active.Velocity.IsEqualTo(v) {
		t.Errorf("velocity changed by second shot: %+v -> %+v", v, sim.Active.Velocity)
	}
	if sim.Shots != 1 {
		t.Errorf("shots = %d, want 1", sim.Shots)
	}
	if sim.Drag(ButtonRight, 10, 0) {
		t.Error("marker drag accepted after it was parked")
	}
}

func TestResetStartsNewRound(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Drag(ButtonRight, 30, 0)
	sim.Shoot()
	for i := 0; i < 20; i++ {
		sim.Update(0.05)
	}

	sim.Reset()

	if sim.Round != 2 {
		t.Errorf("round = %d, want 2", sim.Round)
	}
	if sim.Latch != LatchIdle || sim.Phase != PhaseAiming || sim.PotCount != 0 || sim.Shots != 0 {
		t.Errorf("after reset: latch=%s phase=%s pots=%d shots=%d", sim.Latch, sim.Phase, sim.PotCount, sim.Shots)
	}
	fresh := NewStandardSimulation()
	for i, b := range sim.Bodies() {
		f := fresh.Bodies()[i]
		if !b.Position.IsEqualTo(f.Position) || !b.InPlay || !b.Velocity.IsZero() {
			t.Errorf("body %d not re-racked: %+v", i, b)
		}
	}
	if !sim.Shoot() {
		t.Error("shot rejected after reset")
	}
}

func TestActiveBallFallsOffOpenEnd(t *testing.T) {
	sim := NewStandardSimulation()
	// Away from the aim reference so nothing deflects it.
	sim.Active.SetCenter(NewVec2(2, sim.Active.Position.Z), BallRadius)
	sim.Active.SetVelocity(NewVec2(0, -1))
	sim.Phase = PhaseMoving

	for i := 0; i < 10 && sim.Phase != PhaseLost; i++ {
		sim.Update(0.1)
	}

	if sim.Phase != PhaseLost {
		t.Fatalf("phase = %s, want LOST", sim.Phase)
	}
	if sim.Active.InPlay || !sim.Active.Position.IsEqualTo(Sentinel) || !sim.Active.Velocity.IsZero() {
		t.Errorf("active ball not removed: %+v", sim.Active)
	}
	if sim.Frames != 3 {
		t.Errorf("lost after %d frames, want 3", sim.Frames)
	}

	elapsed := sim.Elapsed
	sim.Update(0.1)
	if sim.Phase != PhaseLost || sim.Elapsed != elapsed {
		t.Errorf("terminal round kept running: phase=%s elapsed=%v", sim.Phase, sim.Elapsed)
	}
}

func TestPotCountReachesFourAndWins(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Active.SetCenter(NewVec2(0, 0), BallRadius)

	placeTargetsAround(sim, 3)
	sim.Update(0.016)

	if sim.PotCount != 3 {
		t.Fatalf("pot count = %d, want 3", sim.PotCount)
	}
	if sim.Phase.Terminal() || !sim.Active.InPlay {
		t.Fatalf("round ended early: phase=%s", sim.Phase)
	}

	last := sim.Targets[3]
	last.SetCenter(sim.Active.Position.Plus(NewVec2(0, -0.3)), last.Height)
	sim.Update(0.016)

	if sim.PotCount != NumTargets {
		t.Errorf("pot count = %d, want %d", sim.PotCount, NumTargets)
	}
	if sim.Phase != PhaseWon {
		t.Errorf("phase = %s, want WON", sim.Phase)
	}
	if sim.Active.InPlay || !sim.Active.Position.IsEqualTo(Sentinel) {
		t.Errorf("active ball not removed after the last pot: %+v", sim.Active)
	}
	for _, tb := range sim.Targets {
		if tb.InPlay || !tb.Position.IsEqualTo(Sentinel) {
			t.Errorf("target %d still on the table: %+v", tb.ID, tb.Position)
		}
	}

	for i := 0; i < 5; i++ {
		sim.Update(0.016)
	}
	if sim.PotCount != NumTargets {
		t.Errorf("pot count kept counting at the sentinel: %d", sim.PotCount)
	}
}

func TestShotPotsTargetAndRebounds(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Active.SetCenter(NewVec2(0.7, 0), BallRadius)
	sim.Active.SetVelocity(NewVec2(0, 1))
	sim.Phase = PhaseMoving

	for i := 0; i < 100 && sim.PotCount == 0; i++ {
		sim.Update(0.05)
	}

	if sim.PotCount != 1 {
		t.Fatalf("pot count = %d, want 1", sim.PotCount)
	}
	if sim.Targets[3].InPlay {
		t.Error("target in the ball's path not potted")
	}
	if sim.Active.Velocity.Z >= 0 {
		t.Errorf("active ball did not rebound: %+v", sim.Active.Velocity)
	}
	if math.Abs(sim.Active.Speed()-1) > 1e-9 {
		t.Errorf("speed = %v, want 1", sim.Active.Speed())
	}

	var sawPot bool
	for _, e := range sim.Events() {
		if e.Type == "pot" && e.BodyID == sim.Targets[3].ID {
			sawPot = true
		}
	}
	if !sawPot {
		t.Errorf("no pot event recorded: %+v", sim.Events())
	}
}

func TestAimReferenceIsPinnedAndDeflects(t *testing.T) {
	sim := NewStandardSimulation()
	ref := sim.AimReference.Position
	sim.Active.SetCenter(NewVec2(0, -4.0), BallRadius)
	sim.Active.SetVelocity(NewVec2(0, -1))

	for i := 0; i < 10 && sim.Active.Velocity.Z < 0; i++ {
		sim.Update(0.05)
	}

	if sim.Active.Velocity.Z <= 0 {
		t.Fatalf("active ball not deflected by the aim reference: %+v", sim.Active.Velocity)
	}
	if !sim.AimReference.Position.IsEqualTo(ref) || !sim.AimReference.Velocity.IsZero() {
		t.Errorf("aim reference moved: pos=%+v vel=%+v", sim.AimReference.Position, sim.AimReference.Velocity)
	}
	if sim.Phase == PhaseLost {
		t.Error("deflected ball counted as fallen")
	}
}

func TestMovingBallComesToRest(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Shoot()
	sim.Active.SetVelocity(NewVec2(0.005, 0))

	sim.Update(0.016)

	if sim.Phase != PhaseResting {
		t.Errorf("phase = %s, want RESTING", sim.Phase)
	}
}

func TestUpdateReturnsEveryBody(t *testing.T) {
	sim := NewStandardSimulation()
	frames := sim.Update(0.016)
	if len(frames) != NumTargets+3 {
		t.Fatalf("got %d frames", len(frames))
	}
	for _, f := range frames {
		b := sim.Bodies()[f.ID]
		if f.Transform != b.Transform {
			t.Errorf("frame %d transform out of date", f.ID)
		}
	}
}

func TestPotCounterProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sim := NewStandardSimulation()
		prev := 0
		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				sim.Drag(ButtonRight, rapid.Float64Range(-300, 300).Draw(t, "dx"), 0)
			case 1:
				sim.Drag(ButtonLeft, rapid.Float64Range(-300, 300).Draw(t, "dx"), 0)
			case 2:
				sim.Shoot()
			default:
				sim.Update(rapid.Float64Range(0, 0.1).Draw(t, "dt"))
			}

			if sim.PotCount < prev {
				t.Fatalf("pot count decreased from %d to %d", prev, sim.PotCount)
			}
			prev = sim.PotCount
			if sim.PotCount > NumTargets {
				t.Fatalf("pot count %d exceeds %d", sim.PotCount, NumTargets)
			}
			if (sim.Phase == PhaseWon) != (sim.PotCount == NumTargets) {
				t.Fatalf("phase %s with pot count %d", sim.Phase, sim.PotCount)
			}
			if math.IsNaN(sim.Active.Position.X) || math.IsNaN(sim.Active.Position.Z) {
				t.Fatal("active ball position is NaN")
			}
		}
	})
}

func TestHugeDragKeepsStateFinite(t *testing.T) {
	sim := NewStandardSimulation()
	if !sim.Drag(ButtonRight, 1e200, 0) {
		t.Fatal("drag rejected")
	}
	if !sim.Shoot() {
		t.Fatal("shot rejected")
	}
	if !sim.Active.Velocity.IsFinite() {
		t.Fatalf("launch velocity = %+v", sim.Active.Velocity)
	}

	for i := 0; i < 3; i++ {
		sim.Update(0.016)
		for _, b := range sim.Bodies() {
			if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
				t.Fatalf("frame %d: body %d pos=%+v vel=%+v", i, b.ID, b.Position, b.Velocity)
			}
		}
		if _, err := json.Marshal(sim.Snapshot()); err != nil {
			t.Fatalf("frame %d: snapshot does not encode: %v", i, err)
		}
	}
}

func TestNonFiniteDragIgnored(t *testing.T) {
	sim := NewStandardSimulation()
	before := sim.AimMarker.Position

	for _, dx := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if sim.Drag(ButtonRight, dx, 0) {
			t.Errorf("drag dx=%v accepted", dx)
		}
	}
	if !sim.AimMarker.Position.IsEqualTo(before) || sim.Latch != LatchIdle {
		t.Errorf("marker=%+v latch=%s, want unchanged", sim.AimMarker.Position, sim.Latch)
	}
}

func TestShootRefusesNonFiniteAim(t *testing.T) {
	sim := NewStandardSimulation()
	sim.AimMarker.SetCenter(NewVec2(math.Inf(1), 0), BallRadius)

	if sim.Shoot() {
		t.Error("shot toward an infinite marker accepted")
	}
	if !sim.Active.Velocity.IsZero() || sim.Latch == LatchFired || sim.Shots != 0 {
		t.Errorf("vel=%+v latch=%s shots=%d", sim.Active.Velocity, sim.Latch, sim.Shots)
	}
}

func TestSnapshotCarriesTransforms(t *testing.T) {
	sim := NewStandardSimulation()
	sim.Shoot()
	frames := sim.Update(0.016)
	snap := sim.snapshotWith(frames)

	if len(snap.Transforms) != len(snap.Bodies) {
		t.Fatalf("transforms=%d bodies=%d", len(snap.Transforms), len(snap.Bodies))
	}
	for i, f := range snap.Transforms {
		b := snap.Bodies[i]
		if f.ID != b.ID || f.Transform.Position() != b.Center() {
			t.Errorf("transform %d = id %d at %+v, body %d at %+v", i, f.ID, f.Transform.Position(), b.ID, b.Center())
		}
	}
	if got := sim.Snapshot().Transforms; len(got) != len(frames) {
		t.Errorf("Snapshot transforms = %d, want %d", len(got), len(frames))
	}
}
