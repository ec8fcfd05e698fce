package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"grid-dqn-go/internal/engine"
)

// printBoard writes the board one row per line, coloring every piece by role.
func printBoard(w io.Writer, board *engine.Board, colors bool) {
	printGrid(w, board.Grid(), colors)
}

// printGrid writes cell codes as returned by Board.Grid.
func printGrid(w io.Writer, grid [][]string, colors bool) {
	fmt.Fprint(w, colorize(grid, colors))
}

func colorize(rows [][]string, colors bool) string {
	au := aurora.NewAurora(colors)
	var sb strings.Builder
	for _, row := range rows {
		for _, code := range row {
			if code == "" {
				code = "*"
			}
			cell := " " + code + " "
			switch code {
			case "P":
				sb.WriteString(au.Bold(au.Cyan(cell)).String())
			case "+":
				sb.WriteString(au.Bold(au.Green(cell)).String())
			case "-":
				sb.WriteString(au.Bold(au.Red(cell)).String())
			case "W":
				sb.WriteString(au.Yellow(cell).String())
			default:
				sb.WriteString(au.White(cell).String())
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
