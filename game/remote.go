package game

import (
	"math"

	"arena-client/config"
	"arena-client/geom"
	"arena-client/predict"
	"arena-client/wire"
)

// Direction codes laid out around the idle centre (Y up):
//
//	4 3 2
//	5 0 1
//	6 7 8
const (
	DirIdle uint8 = iota
	DirRight
	DirUpRight
	DirUp
	DirUpLeft
	DirLeft
	DirDownLeft
	DirDown
	DirDownRight
)

var dirVectors = func() [9]geom.Vec {
	var v [9]geom.Vec
	for code := 1; code <= 8; code++ {
		v[code] = geom.FromAngle(float64(code-1) * math.Pi / 4)
	}
	return v
}()

// DirVector returns the unit vector for a direction code; unknown codes are idle.
func DirVector(code uint8) geom.Vec {
	if int(code) >= len(dirVectors) {
		return geom.Vec{}
	}
	return dirVectors[code]
}

// DirCode returns the direction code nearest to v
func DirCode(v geom.Vec) uint8 {
	if v.Length() < geom.Epsilon {
		return DirIdle
	}
	octant := math.Round(v.Angle() / (math.Pi / 4))
	if octant < 0 {
		octant += 8
	}
	return uint8(int(octant)%8) + DirRight
}

// RemotePlayer dead-reckons another player from its last acked position and
// direction.
type RemotePlayer struct {
	ID          uint8
	AckedPos    geom.Vec
	AckedDir    uint8
	Display     geom.Vec
	PrevDisplay geom.Vec
	Dirs        *predict.Buffer[uint8]

	seen    bool
	scratch []Tile
}

func NewRemotePlayer(cfg config.SimConfig, id uint8) *RemotePlayer {
	return &RemotePlayer{
		ID:   id,
		Dirs: predict.NewBuffer[uint8]("direction", cfg.DirBufferSize),
	}
}

// ApplyUpdate records the authoritative state sent at serverTick.
func (r *RemotePlayer) ApplyUpdate(p wire.RemotePlayer, serverTick predict.Tick) {
	if !r.seen {
		r.Display = p.Pos
		r.seen = true
	}
	r.AckedPos = p.Pos
	r.AckedDir = p.Dir
	r.Dirs.Ack(serverTick)
}

// Update rebuilds the display position from the acked position plus one step
// per outstanding predicted direction, then predicts that the player keeps
// its last known direction next tick.
func (r *RemotePlayer) Update(cfg config.SimConfig, tiles TileSampler, serverTick predict.Tick) {
	r.PrevDisplay = r.Display
	pos := r.AckedPos
	for _, e := range r.Dirs.Entries() {
		pos = pos.Add(DirVector(e.Value).Scale(cfg.PlayerSpeed))
		pos = resolveCircle(tiles, pos, cfg.PlayerRadius, &r.scratch)
	}
	r.Display = pos

	last, ok := r.Dirs.LastTick()
	if !ok {
		last = serverTick
	}
	r.Dirs.Predict(r.AckedDir, last.Next())
}
