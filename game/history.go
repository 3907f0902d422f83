package game

import "arena-client/geom"

// History keeps the most recent snapshots for render-side scrubbing.
type History struct {
	snaps []Snapshot
	next  int
	full  bool
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		panic("game: history capacity must be positive")
	}
	return &History{snaps: make([]Snapshot, capacity)}
}

// Push records a snapshot, overwriting the oldest when full
func (h *History) Push(s Snapshot) {
	h.snaps[h.next] = s
	h.next = (h.next + 1) % len(h.snaps)
	if h.next == 0 {
		h.full = true
	}
}

func (h *History) Len() int {
	if h.full {
		return len(h.snaps)
	}
	return h.next
}

// At returns the snapshot age ticks old; 0 is the newest.
func (h *History) At(age int) (Snapshot, bool) {
	if age < 0 || age >= h.Len() {
		return Snapshot{}, false
	}
	i := (h.next - 1 - age + len(h.snaps)) % len(h.snaps)
	return h.snaps[i], true
}

// Latest returns the newest snapshot
func (h *History) Latest() (Snapshot, bool) {
	return h.At(0)
}

// Interpolate returns the render position between the previous and current
// display positions, alpha in [0,1] being the fraction of the tick elapsed.
func Interpolate(prev, cur geom.Vec, alpha float64) geom.Vec {
	return geom.Lerp(prev, cur, geom.Clamp(alpha, 0, 1))
}

// FacingAngle interpolates the local player's facing between two snapshots
// along the short way round.
func FacingAngle(prev, cur Snapshot, alpha float64) float64 {
	from := prev.Local.Predicted.Facing.Angle()
	turn := geom.NormalizeAngle(cur.Local.Predicted.Facing.Angle() - from)
	return from + turn*geom.Clamp(alpha, 0, 1)
}
