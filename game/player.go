package game

import (
	"slices"

	"arena-client/config"
	"arena-client/geom"
	"arena-client/predict"
	"arena-client/wire"
)

// PlayerNetState is the part of a player's state the server is authoritative for.
type PlayerNetState struct {
	Pos             geom.Vec
	Facing          geom.Vec
	Energy          int
	SecondaryEnergy int
}

// InputSample is the local player's intent for one tick
type InputSample struct {
	Tick                  predict.Tick
	Left, Right, Up, Down bool
	DoPrimary             bool
	DoSecondary           bool
	AimAngle              float64
}

// MoveDir returns the unit movement direction. Opposite keys cancel.
func (in InputSample) MoveDir() geom.Vec {
	var d geom.Vec
	if in.Left {
		d.X--
	}
	if in.Right {
		d.X++
	}
	if in.Up {
		d.Y++
	}
	if in.Down {
		d.Y--
	}
	return d.Normalize()
}

// Wire converts the sample to its network form
func (in InputSample) Wire() wire.Input {
	return wire.Input{
		Left:      in.Left,
		Right:     in.Right,
		Up:        in.Up,
		Down:      in.Down,
		Tick:      in.Tick,
		Primary:   in.DoPrimary,
		Secondary: in.DoSecondary,
		AimAngle:  in.AimAngle,
	}
}

// InputFromWire is the inverse of Wire
func InputFromWire(w wire.Input) InputSample {
	return InputSample{
		Tick:        w.Tick,
		Left:        w.Left,
		Right:       w.Right,
		Up:          w.Up,
		Down:        w.Down,
		DoPrimary:   w.Primary,
		DoSecondary: w.Secondary,
		AimAngle:    w.AimAngle,
	}
}

// Shot is a laser the local player fired this tick
type Shot struct {
	Kind  LaserKind
	Start geom.Vec
	Angle float64
}

// LocalPlayer predicts the controlled player ahead of the server.
type LocalPlayer struct {
	ID          uint8
	Acked       PlayerNetState
	Predicted   PlayerNetState
	Display     geom.Vec
	PrevDisplay geom.Vec
	Inputs      *predict.Buffer[InputSample]

	respawned bool
	scratch   []Tile
}

func NewLocalPlayer(cfg config.SimConfig) *LocalPlayer {
	full := PlayerNetState{
		Facing:          geom.Vec{X: 1},
		Energy:          cfg.MaxLaserEnergy,
		SecondaryEnergy: cfg.MaxBouncyEnergy,
	}
	return &LocalPlayer{
		Acked:     full,
		Predicted: full,
		Inputs:    predict.NewBuffer[InputSample]("input", cfg.InputBufferSize),
		respawned: true, // snap to the first acked position
	}
}

// ApplyUpdate takes the server's authoritative state and discards the
// inputs it has processed.
func (p *LocalPlayer) ApplyUpdate(u wire.StateUpdate) {
	p.Acked.Pos = u.Pos
	p.Acked.Energy = int(u.Energy)
	p.Acked.SecondaryEnergy = int(u.SecondaryEnergy)
	if u.Respawn {
		p.respawned = true
	}
	if !u.Ack {
		return
	}
	entries := p.Inputs.Entries()
	match := slices.IndexFunc(entries, func(e predict.Entry[InputSample]) bool {
		return e.Tick == u.AckedTick
	})
	if match < 0 {
		// No buffered input was confirmed.
		return
	}
	for _, e := range entries[:match+1] {
		if e.Value.DoPrimary || e.Value.DoSecondary {
			p.Acked.Facing = geom.FromAngle(e.Value.AimAngle)
		}
	}
	p.Inputs.Ack(u.AckedTick)
}

// Update re-simulates the player from the acked state through every
// unacknowledged input, then glides the display position toward the
// prediction. current is the newest input, already buffered. A shot is
// returned when current fires and the replay could afford it.
func (p *LocalPlayer) Update(cfg config.SimConfig, tiles TileSampler, current InputSample) *Shot {
	p.Predicted = p.Acked
	p.PrevDisplay = p.Display

	if p.respawned {
		p.respawned = false
		p.Display = p.Acked.Pos
		p.PrevDisplay = p.Acked.Pos
		return nil
	}

	var shot *Shot
	for _, e := range p.Inputs.Entries() {
		fired := p.Predicted.apply(cfg, tiles, e.Value, &p.scratch)
		if fired != nil && e.Tick == current.Tick {
			shot = fired
		}
	}

	step := current.MoveDir().Scale(cfg.PlayerSpeed)
	p.Display = resolveCircle(tiles, p.Display.Add(step), cfg.PlayerRadius, &p.scratch)

	correction := p.Predicted.Pos.Sub(p.Display).ClampLength(cfg.PlayerSpeed)
	p.Display = p.Display.Add(correction)
	return shot
}

// apply advances the state by one input: spend energy on an affordable shot,
// move, resolve collisions, then regenerate.
func (s *PlayerNetState) apply(cfg config.SimConfig, tiles TileSampler, in InputSample, scratch *[]Tile) *Shot {
	var shot *Shot
	if in.DoPrimary && s.Energy >= cfg.LaserEnergyCost {
		s.Energy -= cfg.LaserEnergyCost
		shot = &Shot{Kind: LaserStraight, Angle: in.AimAngle}
	} else if in.DoSecondary && s.SecondaryEnergy >= cfg.BouncyEnergyCost {
		s.SecondaryEnergy -= cfg.BouncyEnergyCost
		shot = &Shot{Kind: LaserBouncy, Angle: in.AimAngle}
	}
	if shot != nil {
		s.Facing = geom.FromAngle(in.AimAngle)
		shot.Start = s.Pos
	}

	s.Pos = s.Pos.Add(in.MoveDir().Scale(cfg.PlayerSpeed))
	s.Pos = resolveCircle(tiles, s.Pos, cfg.PlayerRadius, scratch)

	s.Energy = min(s.Energy+1, cfg.MaxLaserEnergy)
	s.SecondaryEnergy = min(s.SecondaryEnergy+1, cfg.MaxBouncyEnergy)
	return shot
}
