package game

import (
	"fmt"
	"time"
)

// Stats counts what the simulation has processed since it started
type Stats struct {
	Ticks         uint64
	Received      uint64
	Rejected      uint64
	EvictedInputs uint64
	SendErrors    uint64
	ShotsFired    uint64
	Impacts       uint64
}

// Sub returns the counts accumulated since prev
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		Ticks:         s.Ticks - prev.Ticks,
		Received:      s.Received - prev.Received,
		Rejected:      s.Rejected - prev.Rejected,
		EvictedInputs: s.EvictedInputs - prev.EvictedInputs,
		SendErrors:    s.SendErrors - prev.SendErrors,
		ShotsFired:    s.ShotsFired - prev.ShotsFired,
		Impacts:       s.Impacts - prev.Impacts,
	}
}

// Summary formats a log line for counts gathered over elapsed
func (s Stats) Summary(elapsed time.Duration) string {
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(s.Ticks) / secs
	}
	return fmt.Sprintf("ticks=%d (%.1f/s) msgs=%d rejected=%d evicted=%d send_err=%d shots=%d impacts=%d",
		s.Ticks, rate, s.Received, s.Rejected, s.EvictedInputs, s.SendErrors, s.ShotsFired, s.Impacts)
}
