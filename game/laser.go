package game

import (
	"fmt"

	"arena-client/config"
	"arena-client/geom"
	"arena-client/predict"
	"arena-client/wire"
)

// LaserKind selects a laser's speed, trail and wall behaviour
type LaserKind uint8

const (
	LaserStraight LaserKind = iota // stops at the first wall
	LaserBouncy                    // reflects off walls
)

func (k LaserKind) String() string {
	switch k {
	case LaserStraight:
		return "straight"
	case LaserBouncy:
		return "bouncy"
	}
	return fmt.Sprintf("LaserKind(%d)", uint8(k))
}

// LaserKindFromWire maps the wire kind byte to a LaserKind
func LaserKindFromWire(k uint8) (LaserKind, error) {
	switch k {
	case wire.LaserStraight:
		return LaserStraight, nil
	case wire.LaserBouncy:
		return LaserBouncy, nil
	}
	return 0, fmt.Errorf("unknown laser kind %d", k)
}

// Laser is a projectile. Seg is the distance covered in the last sub-step,
// Trail the polyline drawn behind it, oldest point first.
type Laser struct {
	Kind           LaserKind
	OwnerID        uint8
	Seg            geom.Line
	Dir            geom.Vec
	TicksAlive     uint32
	LagCompensated bool
	SpawnTick      predict.Tick
	Trail          []geom.Vec

	dead bool
}

// Target is a player a laser can hit
type Target struct {
	ID  uint8
	Pos geom.Vec
}

// Impact is a laser stopping on a wall or player
type Impact struct {
	Laser     *Laser
	Point     geom.Vec
	HitPlayer bool
	PlayerID  uint8
}

// StepEnv is what lasers collide with during one tick.
type StepEnv struct {
	Tiles      TileSampler
	Players    []Target
	LocalID    uint8
	Unacked    int          // local inputs the server has not processed yet
	ServerTick predict.Tick // latest server tick received
}

// Lasers steps every active projectile
type Lasers struct {
	cfg    config.SimConfig
	active []*Laser
	tiles  []Tile // sampled walls, reused across sub-steps
}

func NewLasers(cfg config.SimConfig) *Lasers {
	return &Lasers{cfg: cfg}
}

// Spawn adds a laser at start travelling along angle
func (ls *Lasers) Spawn(kind LaserKind, owner uint8, start geom.Vec, angle float64, spawnTick predict.Tick) *Laser {
	l := &Laser{
		Kind:      kind,
		OwnerID:   owner,
		Seg:       geom.Line{Start: start, End: start},
		Dir:       geom.FromAngle(angle),
		SpawnTick: spawnTick,
		Trail:     []geom.Vec{start},
	}
	ls.active = append(ls.active, l)
	return l
}

// Active returns the live lasers. The slice is valid until the next Spawn or Step.
func (ls *Lasers) Active() []*Laser {
	return ls.active
}

func (ls *Lasers) speed(k LaserKind) float64 {
	if k == LaserBouncy {
		return ls.cfg.BouncySpeed
	}
	return ls.cfg.LaserSpeed
}

// Step ages every laser, advances it one tick (plus its one-time lag
// compensation catch-up) and returns the terminal hits.
func (ls *Lasers) Step(env StepEnv) []Impact {
	var impacts []Impact
	kept := ls.active[:0]
	for _, l := range ls.active {
		l.TicksAlive++
		if l.TicksAlive > ls.cfg.LaserTimeTicks {
			continue
		}

		steps := 1
		if !l.LagCompensated {
			l.LagCompensated = true
			if l.OwnerID != env.LocalID {
				steps += env.Unacked
			}
			steps += int(predict.Distance(l.SpawnTick, env.ServerTick))
		}

		for i := 0; i < steps && !l.dead; i++ {
			if imp, ok := ls.advance(l, env); ok {
				impacts = append(impacts, imp)
			}
		}
		l.trimTrail(ls.cfg.TrailLength(l.Kind == LaserBouncy) + ls.speed(l.Kind))

		if !l.dead {
			kept = append(kept, l)
		}
	}
	clear(ls.active[len(kept):])
	ls.active = kept
	return impacts
}

// advance moves the leading edge one sub-step, bouncing as often as the
// remaining distance and bounce budget allow.
func (ls *Lasers) advance(l *Laser, env StepEnv) (Impact, bool) {
	remaining := ls.speed(l.Kind)
	start := l.Seg.End
	for bounces := 0; ; {
		end := start.Add(l.Dir.Scale(remaining))
		seg := geom.Line{Start: start, End: end}

		hit, target, ok := ls.nearestHit(seg, l, env)
		if !ok {
			l.Seg = seg
			l.Trail = append(l.Trail, end)
			return Impact{}, false
		}

		l.Seg = geom.Line{Start: start, End: hit.Point}
		l.Trail = append(l.Trail, hit.Point)
		if target != nil {
			l.dead = true
			return Impact{Laser: l, Point: hit.Point, HitPlayer: true, PlayerID: target.ID}, true
		}
		bounces++
		if l.Kind != LaserBouncy || bounces > ls.cfg.MaxBounces {
			l.dead = true
			return Impact{Laser: l, Point: hit.Point}, true
		}

		remaining -= start.DistanceTo(hit.Point)
		l.Dir = geom.Reflect(l.Dir, hit.Normal).Normalize()
		start = hit.Point
	}
}

// nearestHit returns the closest wall or player crossing along seg. target
// is nil for a wall hit.
func (ls *Lasers) nearestHit(seg geom.Line, l *Laser, env StepEnv) (geom.Hit, *Target, bool) {
	var (
		best   geom.Hit
		bestD  float64
		target *Target
		found  bool
		dir    = seg.Dir().Normalize()
		reach  = seg.Length()/2 + ls.cfg.TileSize
		midway = geom.Lerp(seg.Start, seg.End, 0.5)
	)
	ls.tiles = ls.tiles[:0]
	if env.Tiles != nil {
		ls.tiles = env.Tiles.SampleSolidTiles(midway, reach, ls.tiles)
	}
	for _, t := range ls.tiles {
		hit, ok := t.hit(seg)
		if !ok {
			continue
		}
		d := seg.Start.DistanceTo(hit.Point)
		// Leaving the surface just bounced off.
		if d < geom.Epsilon && dir.Dot(hit.Normal) >= 0 {
			continue
		}
		if !found || d < bestD {
			best, bestD, found = hit, d, true
		}
	}

	for i := range env.Players {
		p := &env.Players[i]
		if p.ID == l.OwnerID {
			continue
		}
		hit, ok := geom.SegmentCircleHit(seg, geom.Circle{Pos: p.Pos, Radius: ls.cfg.PlayerRadius})
		if !ok {
			continue
		}
		d := seg.Start.DistanceTo(hit.Point)
		if !found || d < bestD {
			best, bestD, target, found = hit, d, p, true
		}
	}
	return best, target, found
}

// trimTrail shortens the trail from its oldest end so its total length is
// at most max.
func (l *Laser) trimTrail(max float64) {
	total := 0.0
	for i := len(l.Trail) - 1; i > 0; i-- {
		seg := l.Trail[i].DistanceTo(l.Trail[i-1])
		if total+seg <= max {
			total += seg
			continue
		}
		keep := max - total
		t := 0.0
		if seg > geom.Epsilon {
			t = keep / seg
		}
		l.Trail[i-1] = geom.Lerp(l.Trail[i], l.Trail[i-1], t)
		n := copy(l.Trail, l.Trail[i-1:])
		clear(l.Trail[n:])
		l.Trail = l.Trail[:n]
		return
	}
}
