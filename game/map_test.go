package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"arena-client/geom"
	"arena-client/wire"
)

func TestKindFromIDRoundTrip(t *testing.T) {
	for id := uint8(0); id <= 17; id++ {
		kind, team, err := KindFromID(id)
		require.NoError(t, err, "id %d", id)
		require.Equal(t, id, Tile{Kind: kind, Team: team}.ID(), "id %d (%s)", id, kind)
	}
	_, _, err := KindFromID(18)
	require.Error(t, err)
}

func TestKindFromIDTeams(t *testing.T) {
	kind, team, err := KindFromID(6)
	require.NoError(t, err)
	require.Equal(t, TileSpawn, kind)
	require.Equal(t, TeamRed, team)

	kind, team, err = KindFromID(16)
	require.NoError(t, err)
	require.Equal(t, TileFlagGoal, kind)
	require.Equal(t, TeamBlue, team)
}

func TestTriangleVertices(t *testing.T) {
	tile := Tile{
		Kind: TileWallTriangle,
		Rect: geom.Rect{Pos: geom.V(64, 32), Size: geom.V(32, 32)},
	}
	a, b, c := tile.Triangle()
	require.Equal(t, geom.V(64, 32), a)
	require.Equal(t, geom.V(96, 32), b)
	require.Equal(t, geom.V(80, 48), c)

	tile.Kind = TileWallTriangleCorner
	tile.Orientation = 1
	a, b, c = tile.Triangle()
	require.Equal(t, geom.V(96, 32), a)
	require.Equal(t, geom.V(96, 64), b)
	require.Equal(t, geom.V(64, 32), c)
}

func TestTriangleTilePushesOut(t *testing.T) {
	tile := Tile{
		Kind: TileWallTriangle,
		Rect: geom.Rect{Pos: geom.V(0, 0), Size: geom.V(32, 32)},
	}
	// Circle just below the base edge, overlapping by 2.
	push, ok := tile.overlap(geom.Circle{Pos: geom.V(16, -8), Radius: 10})
	require.True(t, ok)
	require.True(t, push.ApproxEqual(geom.V(0, -2), 1e-9), "push %+v", push)

	_, ok = tile.overlap(geom.Circle{Pos: geom.V(16, -20), Radius: 10})
	require.False(t, ok)
}

func TestNewMapLayout(t *testing.T) {
	m := mustMap(t, corridor(3, 4, 2), 32)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 4, m.Cols())

	tile, ok := m.Tile(1, 2)
	require.True(t, ok)
	require.Equal(t, TileWall, tile.Kind)
	require.Equal(t, geom.V(64, 32), tile.Rect.Pos)

	_, ok = m.Tile(3, 0)
	require.False(t, ok)
	_, ok = m.Tile(0, -1)
	require.False(t, ok)
}

func TestNewMapRejects(t *testing.T) {
	_, err := NewMap(corridor(1, 1), 0)
	require.Error(t, err)

	bad := wire.TileMap{Width: 1, Rows: [][]wire.Cell{{{Type: 30}}}}
	_, err = NewMap(bad, 32)
	require.Error(t, err)
}

func TestMapEncodeRoundTrip(t *testing.T) {
	src := corridor(2, 5, 0, 4)
	src.Rows[1][2] = wire.Cell{Type: 7, Orientation: 2, Variation: 9}
	m := mustMap(t, src, 32)
	require.Equal(t, src, m.Encode())
}

func TestSampleSolidTiles(t *testing.T) {
	m := mustMap(t, corridor(10, 10, 0, 9), 32)

	got := m.SampleSolidTiles(geom.V(48, 160), 16, nil)
	require.NotEmpty(t, got)
	for _, tile := range got {
		require.Equal(t, 0, tile.Col)
		require.InDelta(t, 5, tile.Row, 2)
	}

	// Samples near the edge are clamped to the grid.
	got = m.SampleSolidTiles(geom.V(-100, -100), 16, nil)
	require.Empty(t, got)

	// Results append to the caller's slice without reallocating it.
	buf := make([]Tile, 0, 16)
	got = m.SampleSolidTiles(geom.V(300, 300), 16, buf)
	require.NotEmpty(t, got)
	require.Same(t, &buf[:1][0], &got[0])
	for _, tile := range got {
		require.Equal(t, 9, tile.Col)
	}
}

func TestResolveCircleAgainstCorner(t *testing.T) {
	src := corridor(3, 3)
	src.Rows[1][1] = wall
	m := mustMap(t, src, 32)

	// Overlapping the wall's top-right corner diagonally.
	var scratch []Tile
	pos := resolveCircle(m, geom.V(66, 66), 4, &scratch)
	require.InDelta(t, 4, pos.DistanceTo(geom.V(64, 64)), 1e-9)
	require.NotEmpty(t, scratch)

	require.Equal(t, geom.V(1, 1), resolveCircle(nil, geom.V(1, 1), 4, &scratch))
}
