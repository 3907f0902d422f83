package game

import (
	"fmt"

	"arena-client/geom"
	"arena-client/wire"
)

// TileSampler finds solid tiles near a point. Results are appended to buf,
// so callers on the tick path can reuse one slice.
type TileSampler interface {
	SampleSolidTiles(pos geom.Vec, radius float64, buf []Tile) []Tile
}

// Map is the tile grid received in the init message. Row 0 is at y=0 and
// rows grow upwards.
type Map struct {
	tileSize float64
	cols     int
	rows     [][]Tile
}

// NewMap builds the tile grid from a decoded run-length map.
func NewMap(m wire.TileMap, tileSize float64) (*Map, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %v", tileSize)
	}
	g := &Map{tileSize: tileSize, cols: m.Width, rows: make([][]Tile, len(m.Rows))}
	for r, row := range m.Rows {
		g.rows[r] = make([]Tile, len(row))
		for c, cell := range row {
			kind, team, err := KindFromID(cell.Type)
			if err != nil {
				return nil, fmt.Errorf("tile %d,%d: %w", r, c, err)
			}
			g.rows[r][c] = Tile{
				Kind:        kind,
				Team:        team,
				Orientation: cell.Orientation,
				Variation:   cell.Variation,
				Row:         r,
				Col:         c,
				Rect: geom.Rect{
					Pos:  geom.Vec{X: float64(c) * tileSize, Y: float64(r) * tileSize},
					Size: geom.Vec{X: tileSize, Y: tileSize},
				},
			}
		}
	}
	return g, nil
}

// Encode converts the grid back to its wire form
func (m *Map) Encode() wire.TileMap {
	out := wire.TileMap{Width: m.cols, Rows: make([][]wire.Cell, len(m.rows))}
	for r, row := range m.rows {
		out.Rows[r] = make([]wire.Cell, len(row))
		for c, t := range row {
			out.Rows[r][c] = wire.Cell{Type: t.ID(), Orientation: t.Orientation, Variation: t.Variation}
		}
	}
	return out
}

func (m *Map) TileSize() float64 { return m.tileSize }
func (m *Map) Rows() int         { return len(m.rows) }
func (m *Map) Cols() int         { return m.cols }

// Tile returns the tile at row, col, or ok=false outside the grid
func (m *Map) Tile(row, col int) (Tile, bool) {
	if row < 0 || row >= len(m.rows) || col < 0 || col >= len(m.rows[row]) {
		return Tile{}, false
	}
	return m.rows[row][col], true
}

// cellOf returns the grid cell containing p
func (m *Map) cellOf(p geom.Vec) (row, col int) {
	return int(p.Y / m.tileSize), int(p.X / m.tileSize)
}

// SampleSolidTiles appends the solid tiles in a square of cells around pos,
// wide enough to cover radius, to buf.
func (m *Map) SampleSolidTiles(pos geom.Vec, radius float64, buf []Tile) []Tile {
	row, col := m.cellOf(pos)
	steps := int(radius/m.tileSize) + 1
	minR, maxR := row-steps, row+steps
	minC, maxC := col-steps, col+steps
	if minR < 0 {
		minR = 0
	}
	if maxR >= len(m.rows) {
		maxR = len(m.rows) - 1
	}
	if minC < 0 {
		minC = 0
	}
	for r := minR; r <= maxR; r++ {
		rowTiles := m.rows[r]
		hi := maxC
		if hi >= len(rowTiles) {
			hi = len(rowTiles) - 1
		}
		for c := minC; c <= hi; c++ {
			if rowTiles[c].Kind.Solid() {
				buf = append(buf, rowTiles[c])
			}
		}
	}
	return buf
}

// resolveCircle pushes a circle out of every solid tile around it, one tile
// at a time, and returns the corrected centre. scratch holds the sampled
// tiles between calls.
func resolveCircle(tiles TileSampler, pos geom.Vec, radius float64, scratch *[]Tile) geom.Vec {
	if tiles == nil {
		return pos
	}
	*scratch = tiles.SampleSolidTiles(pos, radius, (*scratch)[:0])
	for _, t := range *scratch {
		if push, ok := t.overlap(geom.Circle{Pos: pos, Radius: radius}); ok {
			pos = pos.Add(push)
		}
	}
	return pos
}
