package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardRender(t *testing.T) {
	board := NewBoard(4)
	board.AddPiece("Player", "P", Position{Row: 0, Col: 3})
	board.AddPiece("Goal", "+", Position{Row: 0, Col: 0})
	board.AddPiece("Wall", "W", Position{Row: 1, Col: 1})

	want := " +  *  *  P \n" +
		" *  W  *  * \n" +
		" *  *  *  * \n" +
		" *  *  *  * \n"
	assert.Equal(t, want, board.Render())
}

func TestBoardRenderSharedCellShowsFirstPiece(t *testing.T) {
	board := NewBoard(4)
	board.AddPiece("Player", "P", Position{Row: 2, Col: 2})
	board.AddPiece("Goal", "+", Position{Row: 2, Col: 2})

	assert.Equal(t, "P", board.Grid()[2][2])
}

func TestBoardRenderArray(t *testing.T) {
	board := NewBoard(4)
	board.AddPiece("Player", "P", Position{Row: 0, Col: 3})
	board.AddPiece("Goal", "+", Position{Row: 0, Col: 0})
	board.AddPiece("Pit", "-", Position{Row: 0, Col: 1})
	board.AddPiece("Wall", "W", Position{Row: 1, Col: 1})

	arr := board.RenderArray()
	require.Len(t, arr, 4*4*4)

	hot := []int{3, 16 + 0, 32 + 1, 48 + 5}
	for plane := 0; plane < 4; plane++ {
		var sum float64
		for i := plane * 16; i < (plane+1)*16; i++ {
			sum += arr[i]
		}
		assert.Equal(t, 1.0, sum, "plane %d", plane)
		assert.Equal(t, 1.0, arr[hot[plane]], "plane %d", plane)
	}
}

func TestBoardAddPieceReplaceKeepsOrder(t *testing.T) {
	board := NewBoard(4)
	board.AddPiece("Player", "P", Position{Row: 0, Col: 0})
	board.AddPiece("Goal", "+", Position{Row: 1, Col: 1})
	board.AddPiece("Player", "Q", Position{Row: 3, Col: 3})

	pieces := board.Pieces()
	require.Len(t, pieces, 2)
	assert.Equal(t, Piece{Name: "Player", Code: "Q", Pos: Position{Row: 3, Col: 3}}, pieces[0])
	assert.Equal(t, "Goal", pieces[1].Name)

	_, ok := board.Piece("Pit")
	assert.False(t, ok)
}

func TestBoardAddPieceRejectsOffBoard(t *testing.T) {
	board := NewBoard(4)
	assert.Panics(t, func() { board.AddPiece("Player", "P", Position{Row: 4, Col: 0}) })
	assert.Panics(t, func() { board.AddPiece("Player", "P", Position{Row: 0, Col: -1}) })
	assert.Equal(t, 0, board.NumPieces())
}
