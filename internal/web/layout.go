package web

import (
	"github.com/jaminalder/morabaraba/internal/domain"
)

const gridSize = 7

// grid maps each cell of the 7x7 drawing grid to a board position, or -1.
var grid = buildGrid()

// coords is the inverse of grid: [row, col] of every position.
var coords [domain.Positions][2]int

func buildGrid() [gridSize][gridSize]int {
	var g [gridSize][gridSize]int
	for r := range g {
		for c := range g[r] {
			g[r][c] = -1
		}
	}
	for ring := 0; ring < 3; ring++ {
		lo, hi := ring, gridSize-1-ring
		mid := gridSize / 2
		// clockwise from the top-left corner
		cells := [8][2]int{
			{lo, lo}, {lo, mid}, {lo, hi}, {mid, hi},
			{hi, hi}, {hi, mid}, {hi, lo}, {mid, lo},
		}
		for i, rc := range cells {
			pos := ring*8 + i
			g[rc[0]][rc[1]] = pos
			coords[pos] = rc
		}
	}
	return g
}

type cellView struct {
	Pos      int
	Point    bool
	Symbol   string
	Class    string
	Target   bool
	Selected bool
}

type boardView struct {
	ID    string
	State domain.State
	Phase string
	Hint  string
	Rows  [][]cellView
}

func newBoardView(id string, s domain.State, targets []int) boardView {
	clickable := make(map[int]bool, len(targets))
	for _, pos := range targets {
		clickable[pos] = true
	}
	inMill := make(map[int]bool)
	for _, m := range s.Mills {
		for _, pos := range m {
			inMill[pos] = true
		}
	}
	rows := make([][]cellView, gridSize)
	for r := range rows {
		rows[r] = make([]cellView, gridSize)
		for c := range rows[r] {
			pos := grid[r][c]
			if pos < 0 {
				continue
			}
			cell := cellView{Pos: pos, Point: true, Target: clickable[pos], Selected: pos == s.Selected}
			cell.Class = "empty"
			switch s.Board[pos] {
			case domain.One:
				cell.Symbol, cell.Class = "●", "p1"
			case domain.Two:
				cell.Symbol, cell.Class = "○", "p2"
			}
			if cell.Selected {
				cell.Class += " selected"
			}
			if inMill[pos] {
				cell.Class += " mill"
			}
			rows[r][c] = cell
		}
	}
	return boardView{
		ID:    id,
		State: s,
		Phase: phaseText(s),
		Hint:  hint(s),
		Rows:  rows,
	}
}

func phaseText(s domain.State) string {
	switch s.PhaseOf(s.Turn) {
	case domain.Placing:
		return "Placing cows"
	case domain.Flying:
		return "Flying cows"
	default:
		return "Moving cows"
	}
}

func hint(s domain.State) string {
	switch {
	case s.Over():
		return "Game over"
	case s.PendingRemoval:
		return "Remove an opponent cow"
	case s.Phase == domain.Placing:
		return "Place a cow on the board"
	case s.Selected != domain.NoPosition:
		return "Move to an empty position"
	default:
		return "Select a cow to move"
	}
}
