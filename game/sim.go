package game

import (
	"fmt"
	"log"
	"slices"

	"arena-client/config"
	"arena-client/geom"
	"arena-client/predict"
	"arena-client/wire"
)

// Sender delivers encoded messages to the server
type Sender interface {
	Send(msg []byte) error
}

// LocalView is the local player as published for rendering
type LocalView struct {
	ID          uint8
	Acked       PlayerNetState
	Predicted   PlayerNetState
	Display     geom.Vec
	PrevDisplay geom.Vec
	Unacked     int
}

// RemoteView is another player as published for rendering
type RemoteView struct {
	ID          uint8
	Display     geom.Vec
	PrevDisplay geom.Vec
	Dir         uint8
}

// LaserView is a laser as published for rendering
type LaserView struct {
	Kind    LaserKind
	OwnerID uint8
	Dir     geom.Vec
	Trail   []geom.Vec
}

// Snapshot is everything one completed tick publishes. It shares no memory
// with the simulation.
type Snapshot struct {
	ClientTick predict.Tick
	ServerTick predict.Tick
	Throttle   bool
	Local      LocalView
	Remotes    []RemoteView
	Lasers     []LaserView
	Impacts    []ImpactView
}

// ImpactView is a terminal laser hit during the tick
type ImpactView struct {
	Kind      LaserKind
	OwnerID   uint8
	Point     geom.Vec
	HitPlayer bool
	PlayerID  uint8
}

// Simulation owns all client-side state between ticks. It is not safe for
// concurrent use; feed it from one goroutine.
type Simulation struct {
	cfg   config.SimConfig
	clock predict.Clock

	serverTick     predict.Tick
	haveServerTick bool
	throttle       bool

	world   *Map
	local   *LocalPlayer
	remotes map[uint8]*RemotePlayer
	lasers  *Lasers
	history *History

	inbox [][]byte
	stats Stats
}

func NewSimulation(cfg config.SimConfig) *Simulation {
	return &Simulation{
		cfg:     cfg,
		local:   NewLocalPlayer(cfg),
		remotes: make(map[uint8]*RemotePlayer),
		lasers:  NewLasers(cfg),
		history: NewHistory(cfg.HistorySize),
	}
}

// Enqueue buffers a received message until the next Step.
func (s *Simulation) Enqueue(msg []byte) {
	s.inbox = append(s.inbox, msg)
}

// Ready reports whether the map and a first state update have arrived.
func (s *Simulation) Ready() bool {
	return s.world != nil && s.haveServerTick
}

func (s *Simulation) Map() *Map          { return s.world }
func (s *Simulation) History() *History  { return s.history }
func (s *Simulation) Stats() Stats       { return s.stats }
func (s *Simulation) Throttled() bool    { return s.throttle }
func (s *Simulation) Tick() predict.Tick { return s.clock.Now() }

// Step runs one simulation tick: apply queued server messages, record and
// send in, predict every player, advance lasers and publish the result.
// Until Ready, only messages are applied and ok is false.
func (s *Simulation) Step(in InputSample, out Sender) (snap Snapshot, ok bool) {
	s.drain()
	if !s.Ready() {
		return Snapshot{}, false
	}
	s.clock.Sync(s.serverTick)
	s.stats.Ticks++

	in.Tick = s.clock.Now()
	evicted := s.local.Inputs.Evicted()
	s.local.Inputs.Predict(in, in.Tick)
	s.stats.EvictedInputs += uint64(s.local.Inputs.Evicted() - evicted)
	if out != nil {
		if err := out.Send(wire.EncodeInput(in.Wire())); err != nil {
			s.stats.SendErrors++
			log.Printf("send input tick %d: %v", in.Tick, err)
		}
	}

	shot := s.local.Update(s.cfg, s.world, in)

	ids := s.remoteIDs()
	targets := make([]Target, 0, len(ids)+1)
	targets = append(targets, Target{ID: s.local.ID, Pos: s.local.Predicted.Pos})
	for _, id := range ids {
		r := s.remotes[id]
		r.Update(s.cfg, s.world, s.serverTick)
		targets = append(targets, Target{ID: id, Pos: r.Display})
	}

	// Lasers already in flight move before new shots spawn.
	impacts := s.lasers.Step(StepEnv{
		Tiles:      s.world,
		Players:    targets,
		LocalID:    s.local.ID,
		Unacked:    s.local.Inputs.Len(),
		ServerTick: s.serverTick,
	})
	s.stats.Impacts += uint64(len(impacts))
	if shot != nil {
		s.lasers.Spawn(shot.Kind, s.local.ID, shot.Start, shot.Angle, s.serverTick)
		s.stats.ShotsFired++
	}

	snap = s.snapshot(impacts)
	s.history.Push(snap)
	s.clock.Advance()
	return snap, true
}

func (s *Simulation) drain() {
	for _, buf := range s.inbox {
		s.stats.Received++
		if err := s.apply(buf); err != nil {
			s.stats.Rejected++
			log.Printf("rejected message: %v", err)
		}
	}
	clear(s.inbox)
	s.inbox = s.inbox[:0]
}

func (s *Simulation) apply(buf []byte) error {
	msg, err := wire.Decode(buf)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case wire.Init:
		world, err := NewMap(m.Map, s.cfg.TileSize)
		if err != nil {
			return fmt.Errorf("init map: %w", err)
		}
		s.world = world
		s.local.ID = m.PlayerID
		log.Printf("joined as player %d on a %dx%d map", m.PlayerID, world.Cols(), world.Rows())
	case wire.StateUpdate:
		for _, l := range m.Lasers {
			if _, err := LaserKindFromWire(l.Kind); err != nil {
				return err
			}
		}
		s.applyUpdate(m)
	default:
		return fmt.Errorf("unexpected message type %d from server", msg.Type())
	}
	return nil
}

func (s *Simulation) applyUpdate(u wire.StateUpdate) {
	s.serverTick = u.ServerTick
	s.haveServerTick = true
	s.throttle = u.Throttle
	s.local.ApplyUpdate(u)

	seen := make(map[uint8]bool, len(u.Players))
	for _, p := range u.Players {
		if p.ID == s.local.ID {
			continue
		}
		r, ok := s.remotes[p.ID]
		if !ok {
			r = NewRemotePlayer(s.cfg, p.ID)
			s.remotes[p.ID] = r
		}
		r.ApplyUpdate(p, u.ServerTick)
		seen[p.ID] = true
	}
	for id := range s.remotes {
		if !seen[id] {
			delete(s.remotes, id)
		}
	}

	for _, l := range u.Lasers {
		if l.Owner == s.local.ID {
			// Already spawned locally when it was fired.
			continue
		}
		kind, _ := LaserKindFromWire(l.Kind)
		s.lasers.Spawn(kind, l.Owner, l.Start, l.Angle, l.SpawnTick)
	}
}

// remoteIDs returns remote player ids in ascending order so that every run
// over the same input steps players identically.
func (s *Simulation) remoteIDs() []uint8 {
	ids := make([]uint8, 0, len(s.remotes))
	for id := range s.remotes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Simulation) snapshot(impacts []Impact) Snapshot {
	snap := Snapshot{
		ClientTick: s.clock.Now(),
		ServerTick: s.serverTick,
		Throttle:   s.throttle,
		Local: LocalView{
			ID:          s.local.ID,
			Acked:       s.local.Acked,
			Predicted:   s.local.Predicted,
			Display:     s.local.Display,
			PrevDisplay: s.local.PrevDisplay,
			Unacked:     s.local.Inputs.Len(),
		},
	}
	for _, id := range s.remoteIDs() {
		r := s.remotes[id]
		snap.Remotes = append(snap.Remotes, RemoteView{
			ID:          id,
			Display:     r.Display,
			PrevDisplay: r.PrevDisplay,
			Dir:         r.AckedDir,
		})
	}
	for _, l := range s.lasers.Active() {
		snap.Lasers = append(snap.Lasers, LaserView{
			Kind:    l.Kind,
			OwnerID: l.OwnerID,
			Dir:     l.Dir,
			Trail:   slices.Clone(l.Trail),
		})
	}
	for _, imp := range impacts {
		snap.Impacts = append(snap.Impacts, ImpactView{
			Kind:      imp.Laser.Kind,
			OwnerID:   imp.Laser.OwnerID,
			Point:     imp.Point,
			HitPlayer: imp.HitPlayer,
			PlayerID:  imp.PlayerID,
		})
	}
	return snap
}
