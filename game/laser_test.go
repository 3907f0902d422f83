package game

import (
	"math"
	"testing"

	"arena-client/geom"
)

func TestStraightLaserStopsAtWall(t *testing.T) {
	cfg := testConfig()
	// Wall column 5 spans x 160..192.
	world := mustMap(t, corridor(1, 10, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	l := ls.Spawn(LaserStraight, 1, geom.V(99, 16), 0, 0)
	env := StepEnv{Tiles: world, LocalID: 1}

	// The leading edge reaches 99+6k; it first passes x=160 on step 11.
	for tick := 1; tick <= 10; tick++ {
		if impacts := ls.Step(env); len(impacts) != 0 {
			t.Fatalf("tick %d: unexpected impact %+v", tick, impacts[0])
		}
	}
	if got := l.Seg.End.X; got >= 160 {
		t.Fatalf("expected leading edge short of wall after 10 ticks, got %f", got)
	}

	impacts := ls.Step(env)
	if len(impacts) != 1 {
		t.Fatalf("expected one impact on tick 11, got %d", len(impacts))
	}
	imp := impacts[0]
	if imp.HitPlayer {
		t.Error("expected wall impact")
	}
	if !imp.Point.ApproxEqual(geom.V(160, 16), 1e-9) {
		t.Errorf("expected hit at (160,16), got %+v", imp.Point)
	}
	if last := imp.Laser.Trail[len(imp.Laser.Trail)-1]; last != imp.Point {
		t.Errorf("expected final trail point at hit %+v, got %+v", imp.Point, last)
	}
	if len(ls.Active()) != 0 {
		t.Errorf("expected laser destroyed, %d still active", len(ls.Active()))
	}
}

func TestBouncyLaserReflects(t *testing.T) {
	cfg := testConfig()
	world := mustMap(t, corridor(1, 10, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	l := ls.Spawn(LaserBouncy, 1, geom.V(155, 16), 0, 0)

	if impacts := ls.Step(StepEnv{Tiles: world, LocalID: 1}); len(impacts) != 0 {
		t.Fatalf("bounce should not be terminal, got %+v", impacts)
	}
	if !l.Dir.ApproxEqual(geom.V(-1, 0), 1e-9) {
		t.Errorf("expected reflected direction (-1,0), got %+v", l.Dir)
	}
	// 5 to the wall, 4 back
	if !l.Seg.End.ApproxEqual(geom.V(156, 16), 1e-9) {
		t.Errorf("expected leading edge at (156,16), got %+v", l.Seg.End)
	}
	if len(ls.Active()) != 1 {
		t.Error("bouncy laser should stay alive")
	}
}

func TestBouncyLaserMultipleBouncesPerStep(t *testing.T) {
	cfg := testConfig()
	cfg.BouncySpeed = 100
	// Gap between walls at x 128..160.
	world := mustMap(t, corridor(1, 10, 3, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	l := ls.Spawn(LaserBouncy, 1, geom.V(144, 16), 0, 0)

	ls.Step(StepEnv{Tiles: world, LocalID: 1})
	// 16 right, 32 left, 32 right, 20 left
	if !l.Seg.End.ApproxEqual(geom.V(140, 16), 1e-9) {
		t.Errorf("expected leading edge at (140,16), got %+v", l.Seg.End)
	}
	if !l.Dir.ApproxEqual(geom.V(-1, 0), 1e-9) {
		t.Errorf("expected direction (-1,0), got %+v", l.Dir)
	}
}

func TestBouncyLaserBounceLimit(t *testing.T) {
	cfg := testConfig()
	cfg.BouncySpeed = 1000
	cfg.MaxBounces = 2
	cfg.BouncyTrailLength = 10000
	world := mustMap(t, corridor(1, 10, 3, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	ls.Spawn(LaserBouncy, 1, geom.V(144, 16), 0, 0)

	impacts := ls.Step(StepEnv{Tiles: world, LocalID: 1})
	if len(impacts) != 1 || impacts[0].HitPlayer {
		t.Fatalf("expected a terminal wall impact after the bounce limit, got %+v", impacts)
	}
	// Third wall contact: 160, 128, 160
	if !impacts[0].Point.ApproxEqual(geom.V(160, 16), 1e-9) {
		t.Errorf("expected final contact at (160,16), got %+v", impacts[0].Point)
	}
}

func TestLaserHitsNearestPlayerNotOwner(t *testing.T) {
	cfg := testConfig()
	ls := NewLasers(cfg)
	ls.Spawn(LaserStraight, 1, geom.V(0, 0), 0, 0)
	env := StepEnv{
		LocalID: 1,
		Players: []Target{
			{ID: 1, Pos: geom.V(0, 0)},  // owner, ignored
			{ID: 3, Pos: geom.V(70, 0)}, // farther
			{ID: 2, Pos: geom.V(36, 0)}, // nearer, edge at x=4
		},
	}
	impacts := ls.Step(env)
	if len(impacts) != 1 {
		t.Fatalf("expected one impact, got %d", len(impacts))
	}
	if !impacts[0].HitPlayer || impacts[0].PlayerID != 2 {
		t.Errorf("expected hit on player 2, got %+v", impacts[0])
	}
	if !impacts[0].Point.ApproxEqual(geom.V(4, 0), 1e-9) {
		t.Errorf("expected hit at (4,0), got %+v", impacts[0].Point)
	}
}

func TestWallBlocksPlayerBehindIt(t *testing.T) {
	cfg := testConfig()
	world := mustMap(t, corridor(1, 10, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	ls.Spawn(LaserStraight, 1, geom.V(157, 16), 0, 0)
	env := StepEnv{Tiles: world, LocalID: 1, Players: []Target{{ID: 4, Pos: geom.V(193, 16)}}}
	impacts := ls.Step(env)
	if len(impacts) != 1 || impacts[0].HitPlayer {
		t.Fatalf("expected wall to win over the player behind it, got %+v", impacts)
	}
}

func TestLaserLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.LaserTimeTicks = 3
	ls := NewLasers(cfg)
	ls.Spawn(LaserStraight, 1, geom.V(0, 0), 0, 0)
	env := StepEnv{LocalID: 1}
	for i := 0; i < 3; i++ {
		ls.Step(env)
	}
	if len(ls.Active()) != 1 {
		t.Fatal("laser should live for its full lifetime")
	}
	ls.Step(env)
	if len(ls.Active()) != 0 {
		t.Error("laser should expire after its lifetime")
	}
}

func TestLagCompensation(t *testing.T) {
	cfg := testConfig()
	ls := NewLasers(cfg)
	foreign := ls.Spawn(LaserStraight, 9, geom.V(0, 0), 0, 254)
	own := ls.Spawn(LaserStraight, 1, geom.V(0, 100), 0, 254)
	env := StepEnv{LocalID: 1, Unacked: 3, ServerTick: 0}

	ls.Step(env)
	// one regular step + 3 unacked + 2 ticks since spawn (254 -> 0)
	if got := foreign.Seg.End.X; math.Abs(got-6*cfg.LaserSpeed) > 1e-9 {
		t.Errorf("expected foreign laser at %f, got %f", 6*cfg.LaserSpeed, got)
	}
	// own lasers skip the unacked catch-up
	if got := own.Seg.End.X; math.Abs(got-3*cfg.LaserSpeed) > 1e-9 {
		t.Errorf("expected own laser at %f, got %f", 3*cfg.LaserSpeed, got)
	}
	if !foreign.LagCompensated || !own.LagCompensated {
		t.Error("lasers should be marked compensated")
	}

	ls.Step(env)
	if got := foreign.Seg.End.X; math.Abs(got-7*cfg.LaserSpeed) > 1e-9 {
		t.Errorf("catch-up must only happen once, got %f", got)
	}
}

func TestLagCompensationDoesNotTunnel(t *testing.T) {
	cfg := testConfig()
	world := mustMap(t, corridor(1, 10, 5), cfg.TileSize)
	ls := NewLasers(cfg)
	ls.Spawn(LaserStraight, 9, geom.V(130, 16), 0, 0)

	// 40 catch-up steps would carry it far past the wall.
	impacts := ls.Step(StepEnv{Tiles: world, LocalID: 1, Unacked: 39})
	if len(impacts) != 1 || !impacts[0].Point.ApproxEqual(geom.V(160, 16), 1e-9) {
		t.Fatalf("expected catch-up to stop at the wall, got %+v", impacts)
	}
}

func TestTrailTrimmed(t *testing.T) {
	cfg := testConfig()
	ls := NewLasers(cfg)
	l := ls.Spawn(LaserStraight, 1, geom.V(0, 0), 0, 0)
	for i := 0; i < 40; i++ {
		ls.Step(StepEnv{LocalID: 1})
	}
	total := 0.0
	for i := 1; i < len(l.Trail); i++ {
		total += l.Trail[i].DistanceTo(l.Trail[i-1])
	}
	limit := cfg.LaserTrailLength + cfg.LaserSpeed
	if math.Abs(total-limit) > 1e-9 {
		t.Errorf("expected trail length %f, got %f", limit, total)
	}
	if last := l.Trail[len(l.Trail)-1]; last != l.Seg.End {
		t.Errorf("trail should end at the leading edge, got %+v", last)
	}
}
