package game

import (
	"testing"

	"arena-client/config"
	"arena-client/wire"
)

var (
	floor = wire.Cell{Type: 1}
	wall  = wire.Cell{Type: 2}
)

func testConfig() config.SimConfig {
	return config.Defaults().Sim
}

// corridor builds a map of rows x cols floor tiles with walls at the
// given columns of every row.
func corridor(rows, cols int, wallCols ...int) wire.TileMap {
	m := wire.TileMap{Width: cols}
	for r := 0; r < rows; r++ {
		row := make([]wire.Cell, cols)
		for c := range row {
			row[c] = floor
		}
		for _, c := range wallCols {
			row[c] = wall
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func mustMap(t *testing.T, m wire.TileMap, tileSize float64) *Map {
	t.Helper()
	g, err := NewMap(m, tileSize)
	if err != nil {
		t.Fatalf("new map: %v", err)
	}
	return g
}

// recorder captures everything the simulation sends
type recorder struct {
	sent [][]byte
	err  error
}

func (r *recorder) Send(msg []byte) error {
	r.sent = append(r.sent, msg)
	return r.err
}
