package main

import (
	"math"
	"math/rand/v2"

	"arena-client/game"
	"arena-client/geom"
)

// bot drives the headless client: it wanders or chases the nearest remote
// player in straight runs and shoots at it when it has the energy.
type bot struct {
	rng  *rand.Rand
	cfg  botConfig
	keys game.InputSample
	hold int
	last game.Snapshot
	seen bool
}

type botConfig struct {
	laserCost   int
	bouncyCost  int
	fireChance  float64
	chaseChance float64
}

func newBot(seed uint64, cfg botConfig) *bot {
	return &bot{rng: rand.New(rand.NewPCG(seed, seed+1)), cfg: cfg}
}

// Next samples the input for the coming tick.
func (b *bot) Next() game.InputSample {
	if b.hold <= 0 {
		b.keys = game.InputSample{
			Left:  b.rng.IntN(3) == 0,
			Right: b.rng.IntN(3) == 0,
			Up:    b.rng.IntN(3) == 0,
			Down:  b.rng.IntN(3) == 0,
		}
		if target, ok := b.nearest(); ok && b.rng.Float64() < b.cfg.chaseChance {
			b.keys = keysToward(target.Sub(b.last.Local.Predicted.Pos))
		}
		b.hold = 10 + b.rng.IntN(30)
	}
	b.hold--

	in := b.keys
	if !b.seen || b.rng.Float64() >= b.cfg.fireChance {
		return in
	}
	target, ok := b.nearest()
	if !ok {
		return in
	}
	me := b.last.Local
	in.AimAngle = target.Sub(me.Predicted.Pos).Angle()
	switch {
	case me.Predicted.SecondaryEnergy >= b.cfg.bouncyCost && b.rng.IntN(4) == 0:
		in.DoSecondary = true
	case me.Predicted.Energy >= b.cfg.laserCost:
		in.DoPrimary = true
	}
	return in
}

// Observe remembers the last published snapshot.
func (b *bot) Observe(s game.Snapshot) {
	b.last = s
	b.seen = true
}

// keysToward presses the keys of the direction code closest to v.
func keysToward(v geom.Vec) game.InputSample {
	d := game.DirVector(game.DirCode(v))
	return game.InputSample{
		Left:  d.X < -0.5,
		Right: d.X > 0.5,
		Up:    d.Y > 0.5,
		Down:  d.Y < -0.5,
	}
}

func (b *bot) nearest() (geom.Vec, bool) {
	var (
		best  geom.Vec
		bestD = math.Inf(1)
	)
	me := b.last.Local.Predicted.Pos
	for _, r := range b.last.Remotes {
		if d := me.DistanceTo(r.Display); d < bestD {
			best, bestD = r.Display, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}
