package engine

import (
	"fmt"
	"strings"
)

const emptyCell = "*"

type Position struct {
	Row int
	Col int
}

func (p Position) add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

type Piece struct {
	Name string
	Code string
	Pos  Position
}

// Board is a sparse map of named pieces over a Size x Size grid. Pieces are
// enumerated in insertion order so rendering never depends on map iteration.
type Board struct {
	Size   int
	pieces map[string]*Piece
	order  []string
}

func NewBoard(size int) *Board {
	return &Board{
		Size:   size,
		pieces: make(map[string]*Piece),
	}
}

// AddPiece inserts or replaces the named piece. Replacing keeps the piece's
// original slot in the enumeration order. It panics when pos is off the board.
func (b *Board) AddPiece(name, code string, pos Position) {
	if !b.InBounds(pos) {
		panic(fmt.Sprintf("engine: piece %s placed off the board at (%d,%d)", name, pos.Row, pos.Col))
	}
	if p, ok := b.pieces[name]; ok {
		p.Code = code
		p.Pos = pos
		return
	}
	b.pieces[name] = &Piece{Name: name, Code: code, Pos: pos}
	b.order = append(b.order, name)
}

func (b *Board) Piece(name string) (Piece, bool) {
	p, ok := b.pieces[name]
	if !ok {
		return Piece{}, false
	}
	return *p, true
}

func (b *Board) position(name string) Position {
	p, ok := b.pieces[name]
	if !ok {
		panic("engine: board has no piece " + name)
	}
	return p.Pos
}

func (b *Board) setPosition(name string, pos Position) {
	p, ok := b.pieces[name]
	if !ok {
		panic("engine: board has no piece " + name)
	}
	p.Pos = pos
}

func (b *Board) Pieces() []Piece {
	out := make([]Piece, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.pieces[name])
	}
	return out
}

func (b *Board) NumPieces() int {
	return len(b.order)
}

func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Size && p.Col >= 0 && p.Col < b.Size
}

// Grid returns the code shown in every cell, or "" for empty cells. When two
// pieces share a cell the one added first is shown.
func (b *Board) Grid() [][]string {
	grid := make([][]string, b.Size)
	for r := range grid {
		grid[r] = make([]string, b.Size)
	}
	for i := len(b.order) - 1; i >= 0; i-- {
		p := b.pieces[b.order[i]]
		grid[p.Pos.Row][p.Pos.Col] = p.Code
	}
	return grid
}

func (b *Board) Render() string {
	var sb strings.Builder
	for _, row := range b.Grid() {
		for _, code := range row {
			if code == "" {
				code = emptyCell
			}
			sb.WriteString(" ")
			sb.WriteString(code)
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderArray flattens the board into one one-hot Size*Size plane per piece.
func (b *Board) RenderArray() []float64 {
	frame := b.Size * b.Size
	pattern := make([]float64, frame*len(b.order))
	for i, name := range b.order {
		p := b.pieces[name]
		pattern[i*frame+p.Pos.Row*b.Size+p.Pos.Col] = 1
	}
	return pattern
}
