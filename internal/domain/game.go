package domain

import "fmt"

// Phase is the stage of play. The game itself is only ever Placing or
// Moving; Flying is derived per player, see State.PhaseOf.
type Phase uint8

const (
	Placing Phase = iota
	Moving
	Flying
)

var phaseNames = [...]string{"placing", "moving", "flying"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

const (
	// Cows is the number of pieces each player starts with.
	Cows = 12
	// FlyingCount is the on-board count at which a player may fly.
	FlyingCount = 3
	// LosingCount is the on-board count at or below which a player has lost.
	LosingCount = 2
	// NoPosition marks the absence of a selected position.
	NoPosition = -1
)

// Tally holds a per-player count.
type Tally struct {
	One int `json:"one"`
	Two int `json:"two"`
}

// Of returns p's count.
func (t Tally) Of(p Player) int {
	switch p {
	case One:
		return t.One
	case Two:
		return t.Two
	}
	return 0
}

func (t *Tally) add(p Player, n int) {
	switch p {
	case One:
		t.One += n
	case Two:
		t.Two += n
	}
}

// State is a full description of a game in progress.
type State struct {
	Board          Board  `json:"board"`
	Phase          Phase  `json:"phase"`
	Turn           Player `json:"turn"`
	Reserve        Tally  `json:"reserve"`
	OnBoard        Tally  `json:"on_board"`
	Selected       int    `json:"selected"`
	PendingRemoval bool   `json:"pending_removal"`
	Mills          []Mill `json:"mills"`
	Winner         Player `json:"winner"`
}

func initialState() State {
	return State{
		Phase:    Placing,
		Turn:     One,
		Reserve:  Tally{One: Cows, Two: Cows},
		Selected: NoPosition,
	}
}

// Flying reports whether p may move to any empty cell.
func (s State) Flying(p Player) bool {
	return s.Phase != Placing && s.OnBoard.Of(p) == FlyingCount
}

// PhaseOf returns the phase as it applies to p.
func (s State) PhaseOf(p Player) Phase {
	if s.Flying(p) {
		return Flying
	}
	return s.Phase
}

// Over reports whether the game has a winner.
func (s State) Over() bool { return s.Winner != None }

func (s State) clone() State {
	if s.Mills != nil {
		s.Mills = append([]Mill(nil), s.Mills...)
	}
	return s
}

// apply is the whole rule set: it returns the state after pos is selected
// and whether anything changed. Illegal selections return s unchanged.
func (s State) apply(pos int) (State, bool) {
	if s.Winner != None || !valid(pos) {
		return s, false
	}
	if s.PendingRemoval {
		return s.remove(pos)
	}
	if s.Phase == Placing {
		return s.place(pos)
	}
	return s.move(pos)
}

func (s State) place(pos int) (State, bool) {
	if s.Board[pos] != None || s.Reserve.Of(s.Turn) == 0 {
		return s, false
	}
	s.Board[pos] = s.Turn
	s.Reserve.add(s.Turn, -1)
	s.OnBoard.add(s.Turn, 1)
	s = s.settle(pos)
	if s.Reserve.One == 0 && s.Reserve.Two == 0 {
		s.Phase = Moving
	}
	return s, true
}

func (s State) move(pos int) (State, bool) {
	switch {
	case s.Selected == NoPosition:
		if s.Board[pos] != s.Turn {
			return s, false
		}
		s.Selected = pos
		return s, true
	case pos == s.Selected:
		s.Selected = NoPosition
		return s, true
	case s.Board[pos] != None:
		return s, false
	case !s.Flying(s.Turn) && !Adjacent(s.Selected, pos):
		return s, false
	}
	s.Board[s.Selected] = None
	s.Board[pos] = s.Turn
	s.Selected = NoPosition
	return s.settle(pos), true
}

// settle runs after a piece lands on pos: a new mill holds the turn until
// a removal, otherwise the turn passes.
func (s State) settle(pos int) State {
	if ms := millsThrough(s.Board, pos, s.Turn); len(ms) > 0 {
		s.PendingRemoval = true
		s.Mills = ms
		return s
	}
	s.Turn = s.Turn.Opponent()
	return s
}

func (s State) remove(pos int) (State, bool) {
	mover, victim := s.Turn, s.Turn.Opponent()
	if s.Board[pos] != victim || !removable(s.Board, pos, victim) {
		return s, false
	}
	s.Board[pos] = None
	s.OnBoard.add(victim, -1)
	s.PendingRemoval = false
	s.Mills = nil
	s.Turn = victim
	if s.OnBoard.Of(victim) <= LosingCount {
		s.Winner = mover
	}
	return s, true
}

// removable reports whether victim's piece at pos may be captured. Pieces in
// a mill are protected while victim has any piece outside every mill.
func removable(b Board, pos int, victim Player) bool {
	ms := CurrentMills(b, victim)
	if !inAnyMill(ms, pos) {
		return true
	}
	for i, c := range b {
		if c == victim && !inAnyMill(ms, i) {
			return false
		}
	}
	return true
}

// Game is a single Morabaraba match. The zero value is not ready; use New.
type Game struct {
	state State
}

// New returns a new game with player One to place.
func New() Game {
	return Game{state: initialState()}
}

// Select feeds a clicked position into the game and reports whether the
// state changed. Illegal or out-of-range positions are ignored.
func (g *Game) Select(pos int) bool {
	next, ok := g.state.apply(pos)
	if ok {
		g.state = next
	}
	return ok
}

// Reset starts the game over.
func (g *Game) Reset() {
	g.state = initialState()
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() State {
	return g.state.clone()
}

// Targets lists the positions Select would currently act on.
func (g *Game) Targets() []int {
	var out []int
	for pos := 0; pos < Positions; pos++ {
		if _, ok := g.state.apply(pos); ok {
			out = append(out, pos)
		}
	}
	return out
}
