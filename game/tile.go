package game

import (
	"fmt"

	"arena-client/geom"
)

// TileKind is the behaviour class of a map tile
type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileFloor
	TileWall
	TileWallTriangle
	TileWallTriangleCorner
	TileSpawn
	TileJail
	TileFlagGoal
	TileFlagSpawn
)

func (k TileKind) String() string {
	switch k {
	case TileEmpty:
		return "empty"
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileWallTriangle:
		return "wall_triangle"
	case TileWallTriangleCorner:
		return "wall_triangle_corner"
	case TileSpawn:
		return "spawn"
	case TileJail:
		return "jail"
	case TileFlagGoal:
		return "flag_goal"
	case TileFlagSpawn:
		return "flag_spawn"
	}
	return fmt.Sprintf("TileKind(%d)", uint8(k))
}

// Solid reports whether players and lasers collide with the tile
func (k TileKind) Solid() bool {
	switch k {
	case TileWall, TileWallTriangle, TileWallTriangleCorner:
		return true
	}
	return false
}

// Team colours for team-specific tiles
type Team uint8

const (
	TeamNone Team = iota
	TeamGreen
	TeamRed
	TeamYellow
	TeamBlue
)

// Tile type ids on the wire
const (
	idEmpty              = 0
	idFloor              = 1
	idWall               = 2
	idWallTriangle       = 3
	idWallTriangleCorner = 4
	idSpawnFirst         = 5  // green, red, yellow, blue
	idJailFirst          = 9  // green, red, yellow, blue
	idGoalFirst          = 13 // green, red, yellow, blue
	idFlagSpawn          = 17
)

// KindFromID maps a wire tile type id to its kind and team.
func KindFromID(id uint8) (TileKind, Team, error) {
	switch {
	case id == idEmpty:
		return TileEmpty, TeamNone, nil
	case id == idFloor:
		return TileFloor, TeamNone, nil
	case id == idWall:
		return TileWall, TeamNone, nil
	case id == idWallTriangle:
		return TileWallTriangle, TeamNone, nil
	case id == idWallTriangleCorner:
		return TileWallTriangleCorner, TeamNone, nil
	case id >= idSpawnFirst && id < idJailFirst:
		return TileSpawn, Team(id-idSpawnFirst) + TeamGreen, nil
	case id >= idJailFirst && id < idGoalFirst:
		return TileJail, Team(id-idJailFirst) + TeamGreen, nil
	case id >= idGoalFirst && id < idFlagSpawn:
		return TileFlagGoal, Team(id-idGoalFirst) + TeamGreen, nil
	case id == idFlagSpawn:
		return TileFlagSpawn, TeamNone, nil
	}
	return TileEmpty, TeamNone, fmt.Errorf("unknown tile type id %d", id)
}

// ID is the inverse of KindFromID
func (t Tile) ID() uint8 {
	switch t.Kind {
	case TileFloor:
		return idFloor
	case TileWall:
		return idWall
	case TileWallTriangle:
		return idWallTriangle
	case TileWallTriangleCorner:
		return idWallTriangleCorner
	case TileSpawn:
		return idSpawnFirst + uint8(t.Team-TeamGreen)
	case TileJail:
		return idJailFirst + uint8(t.Team-TeamGreen)
	case TileFlagGoal:
		return idGoalFirst + uint8(t.Team-TeamGreen)
	case TileFlagSpawn:
		return idFlagSpawn
	}
	return idEmpty
}

// Tile is one cell of the map. Rect is anchored at the bottom-left corner.
type Tile struct {
	Kind        TileKind
	Team        Team
	Orientation uint8 // 0..3, quarter turns
	Variation   uint8
	Row, Col    int
	Rect        geom.Rect
}

// Triangle returns the counter-clockwise vertices of a triangle tile.
// WallTriangle spans one edge and the tile centre; WallTriangleCorner spans
// half the tile along its diagonal.
func (t Tile) Triangle() (a, b, c geom.Vec) {
	s := t.Rect.Size.X
	o := t.Rect.Pos
	corners := [4]geom.Vec{{X: 0, Y: 0}, {X: s, Y: 0}, {X: s, Y: s}, {X: 0, Y: s}}
	i := int(t.Orientation % 4)
	a = o.Add(corners[i])
	b = o.Add(corners[(i+1)%4])
	if t.Kind == TileWallTriangleCorner {
		c = o.Add(corners[(i+3)%4])
	} else {
		c = o.Add(geom.Vec{X: s / 2, Y: s / 2})
	}
	return a, b, c
}

// overlap returns the displacement that pushes c out of a solid tile.
func (t Tile) overlap(c geom.Circle) (geom.Vec, bool) {
	switch t.Kind {
	case TileWall:
		return geom.CircleRectOverlap(c, t.Rect)
	case TileWallTriangle, TileWallTriangleCorner:
		a, b, v := t.Triangle()
		return geom.CircleTriangleOverlap(c, a, b, v)
	}
	return geom.Vec{}, false
}

// hit returns where l first crosses a solid tile.
func (t Tile) hit(l geom.Line) (geom.Hit, bool) {
	switch t.Kind {
	case TileWall:
		return geom.SegmentRectHit(l, t.Rect)
	case TileWallTriangle, TileWallTriangleCorner:
		a, b, v := t.Triangle()
		return geom.SegmentTriangleHit(l, a, b, v)
	}
	return geom.Hit{}, false
}
