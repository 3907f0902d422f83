package wire

import "fmt"

// Tile chunk bit layout: type:5 | orientation:2 | variation:4 | count-1:5
const (
	MaxTileType        = 31
	MaxTileOrientation = 3
	MaxTileVariation   = 15
	MaxChunkCount      = 32
)

// Cell is one decoded tile
type Cell struct {
	Type        uint8
	Orientation uint8
	Variation   uint8
}

// Chunk is a run of identical cells
type Chunk struct {
	Cell
	Count int // 1..32
}

// TileMap is a grid of cells stored row by row. Every row except possibly
// the last is Width cells long.
type TileMap struct {
	Width int
	Rows  [][]Cell
}

func (c Cell) validate() error {
	if c.Type > MaxTileType || c.Orientation > MaxTileOrientation || c.Variation > MaxTileVariation {
		return fmt.Errorf("%w: tile %+v", ErrOutOfRange, c)
	}
	return nil
}

// PackChunk encodes a chunk into its 16-bit form.
func PackChunk(c Chunk) (uint16, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	if c.Count < 1 || c.Count > MaxChunkCount {
		return 0, fmt.Errorf("%w: chunk count %d", ErrOutOfRange, c.Count)
	}
	bits := uint16(c.Type)
	bits = bits<<2 | uint16(c.Orientation)
	bits = bits<<4 | uint16(c.Variation)
	bits = bits<<5 | uint16(c.Count-1)
	return bits, nil
}

// UnpackChunk is the inverse of PackChunk; every 16-bit value is valid.
func UnpackChunk(bits uint16) Chunk {
	return Chunk{
		Cell: Cell{
			Type:        uint8(bits >> 11 & 0x1f),
			Orientation: uint8(bits >> 9 & 0x3),
			Variation:   uint8(bits >> 5 & 0xf),
		},
		Count: int(bits&0x1f) + 1,
	}
}

// CompressRows run-length encodes rows in row-major order. Runs continue
// across row boundaries and are split at MaxChunkCount.
func CompressRows(rows [][]Cell) []Chunk {
	var (
		chunks []Chunk
		cur    Chunk
	)
	for _, row := range rows {
		for _, c := range row {
			if cur.Count > 0 && (c != cur.Cell || cur.Count == MaxChunkCount) {
				chunks = append(chunks, cur)
				cur = Chunk{}
			}
			cur.Cell = c
			cur.Count++
		}
	}
	if cur.Count > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// ExpandChunks lays chunks out into rows of width cells.
func ExpandChunks(width int, chunks []Chunk) ([][]Cell, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: row width %d", ErrOutOfRange, width)
	}
	rows := [][]Cell{make([]Cell, 0, width)}
	for _, ch := range chunks {
		for i := 0; i < ch.Count; i++ {
			row := rows[len(rows)-1]
			if len(row) == width {
				row = make([]Cell, 0, width)
				rows = append(rows, row)
			}
			rows[len(rows)-1] = append(row, ch.Cell)
		}
	}
	return rows, nil
}

// EncodeTileMap writes [u16 rowWidth][u16 chunk]*.
func EncodeTileMap(m TileMap) ([]byte, error) {
	if m.Width < 0 || m.Width > 0xffff {
		return nil, fmt.Errorf("%w: row width %d", ErrOutOfRange, m.Width)
	}
	for i, row := range m.Rows {
		if len(row) > m.Width || (len(row) != m.Width && i != len(m.Rows)-1) {
			return nil, fmt.Errorf("%w: row %d has %d cells, width %d", ErrOutOfRange, i, len(row), m.Width)
		}
	}
	chunks := CompressRows(m.Rows)
	w := writer{buf: make([]byte, 0, 2+2*len(chunks))}
	w.u16(uint16(m.Width))
	for _, ch := range chunks {
		bits, err := PackChunk(ch)
		if err != nil {
			return nil, err
		}
		w.u16(bits)
	}
	return w.buf, nil
}

// DecodeTileMap parses the run-length tile map format.
func DecodeTileMap(buf []byte) (TileMap, error) {
	r := &reader{buf: buf}
	width := int(r.u16())
	if r.err != nil {
		return TileMap{}, r.err
	}
	if r.remaining()%2 != 0 {
		return TileMap{}, fmt.Errorf("%w: odd chunk data length %d", ErrTruncated, r.remaining())
	}
	chunks := make([]Chunk, 0, r.remaining()/2)
	for r.remaining() > 0 {
		chunks = append(chunks, UnpackChunk(r.u16()))
	}
	rows, err := ExpandChunks(width, chunks)
	if err != nil {
		return TileMap{}, err
	}
	return TileMap{Width: width, Rows: rows}, nil
}
