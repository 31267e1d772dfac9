package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to apply a sequence of selections that must all take effect
func playMoves(t *testing.T, g *Game, positions ...int) {
	t.Helper()
	for i, pos := range positions {
		require.Truef(t, g.Select(pos), "selection %d (%d) was ignored", i, pos)
	}
}

// helper asserting a selection leaves the game untouched
func assertNoop(t *testing.T, g *Game, pos int) {
	t.Helper()
	before := g.Snapshot()
	assert.Falsef(t, g.Select(pos), "selection %d should be ignored", pos)
	assert.Equal(t, before, g.Snapshot())
}

// arranged builds a game in the moving phase with the given pieces.
func arranged(one, two []int, turn Player) Game {
	s := initialState()
	s.Phase = Moving
	s.Turn = turn
	s.Reserve = Tally{}
	for _, pos := range one {
		s.Board[pos] = One
	}
	for _, pos := range two {
		s.Board[pos] = Two
	}
	s.OnBoard = Tally{One: len(one), Two: len(two)}
	return Game{state: s}
}

func TestNewGameInitialState(t *testing.T) {
	g := New()
	s := g.Snapshot()
	assert.Equal(t, Placing, s.Phase)
	assert.Equal(t, One, s.Turn)
	assert.Equal(t, Tally{One: Cows, Two: Cows}, s.Reserve)
	assert.Equal(t, Tally{}, s.OnBoard)
	assert.Equal(t, Board{}, s.Board)
	assert.Equal(t, NoPosition, s.Selected)
	assert.False(t, s.PendingRemoval)
	assert.Empty(t, s.Mills)
	assert.Equal(t, None, s.Winner)
	assert.False(t, s.Over())
}

func TestPlacingAlternatesAndCounts(t *testing.T) {
	g := New()
	playMoves(t, &g, 0)
	s := g.Snapshot()
	assert.Equal(t, One, s.Board[0])
	assert.Equal(t, Two, s.Turn)
	assert.Equal(t, Tally{One: 11, Two: 12}, s.Reserve)
	assert.Equal(t, Tally{One: 1, Two: 0}, s.OnBoard)

	playMoves(t, &g, 5)
	s = g.Snapshot()
	assert.Equal(t, Two, s.Board[5])
	assert.Equal(t, One, s.Turn)
	assert.Equal(t, Tally{One: 11, Two: 11}, s.Reserve)
}

func TestPlaceOnOccupiedIsNoop(t *testing.T) {
	g := New()
	playMoves(t, &g, 0)
	assertNoop(t, &g, 0)
	playMoves(t, &g, 1)
	assertNoop(t, &g, 1)
	assertNoop(t, &g, 0)
}

func TestOutOfRangeIsNoop(t *testing.T) {
	g := New()
	for _, pos := range []int{-1, Positions, 100} {
		assertNoop(t, &g, pos)
	}
}

func TestMillHoldsTurnUntilRemoval(t *testing.T) {
	g := New()
	// 1:0 2:8 1:4 2:10 1:6 2:12 1:1 2:14 1:2
	playMoves(t, &g, 0, 8, 4, 10, 6, 12, 1, 14, 2)

	s := g.Snapshot()
	assert.True(t, IsMill(s.Board, 2, One))
	assert.True(t, s.PendingRemoval)
	assert.Equal(t, One, s.Turn)
	assert.Equal(t, []Mill{{0, 1, 2}}, s.Mills)

	// own piece, empty cell: ignored while a removal is pending
	assertNoop(t, &g, 0)
	assertNoop(t, &g, 3)

	playMoves(t, &g, 8)
	s = g.Snapshot()
	assert.False(t, s.PendingRemoval)
	assert.Empty(t, s.Mills)
	assert.Equal(t, Two, s.Turn)
	assert.Equal(t, None, s.Board[8])
	assert.Equal(t, Tally{One: 7, Two: 8}, s.Reserve)
	assert.Equal(t, Tally{One: 5, Two: 3}, s.OnBoard)
	assert.Equal(t, None, s.Winner)
	assert.Equal(t, Placing, s.Phase)
}

func TestRecordedMillsRunThroughLandingCell(t *testing.T) {
	s := initialState()
	for _, pos := range []int{6, 7, 0, 1, 3, 4} {
		s.Board[pos] = One
	}
	for _, pos := range []int{9, 11, 13, 15} {
		s.Board[pos] = Two
	}
	s.Reserve = Tally{One: 6, Two: 8}
	s.OnBoard = Tally{One: 6, Two: 4}
	g := Game{state: s}

	// 2 closes 0-1-2 and 2-3-4 at once; 6-7-0 was already standing
	playMoves(t, &g, 2)
	got := g.Snapshot()
	assert.True(t, got.PendingRemoval)
	assert.Equal(t, One, got.Turn)
	assert.Equal(t, []Mill{{0, 1, 2}, {2, 3, 4}}, got.Mills)
	assert.Len(t, CurrentMills(got.Board, One), 3)

	playMoves(t, &g, 9)
	got = g.Snapshot()
	assert.False(t, got.PendingRemoval)
	assert.Empty(t, got.Mills)
	assert.Equal(t, Two, got.Turn)
	assert.Equal(t, Tally{One: 7, Two: 3}, got.OnBoard)
	assert.Equal(t, None, got.Winner)
}

func TestOpeningMillScenario(t *testing.T) {
	g := New()
	playMoves(t, &g, 0, 8, 1, 9, 2)

	s := g.Snapshot()
	assert.True(t, IsMill(s.Board, 2, One))
	assert.True(t, s.PendingRemoval)
	assert.Equal(t, One, s.Turn)

	// dropping Two to a single piece on the board ends the game
	playMoves(t, &g, 9)
	s = g.Snapshot()
	assert.Equal(t, One, s.Winner)
	assert.Equal(t, 1, s.OnBoard.Two)
	assert.True(t, s.Over())
	assertNoop(t, &g, 9)
	assertNoop(t, &g, 20)
	assert.Empty(t, g.Targets())
}

func TestPlacingEndsWhenReservesExhausted(t *testing.T) {
	s := initialState()
	s.Board[0], s.Board[8] = One, Two
	s.Reserve = Tally{One: 1, Two: 1}
	s.OnBoard = Tally{One: 1, Two: 1}
	g := Game{state: s}

	playMoves(t, &g, 4)
	assert.Equal(t, Placing, g.Snapshot().Phase)
	playMoves(t, &g, 12)
	got := g.Snapshot()
	assert.Equal(t, Moving, got.Phase)
	assert.Equal(t, One, got.Turn)
	assert.Equal(t, Tally{}, got.Reserve)
}

func TestLastPlacementFormingMill(t *testing.T) {
	s := initialState()
	s.Board[0], s.Board[1] = One, One
	s.Board[8], s.Board[10], s.Board[12] = Two, Two, Two
	s.Reserve = Tally{One: 1, Two: 0}
	s.OnBoard = Tally{One: 2, Two: 3}
	g := Game{state: s}

	playMoves(t, &g, 2)
	got := g.Snapshot()
	assert.Equal(t, Moving, got.Phase)
	assert.True(t, got.PendingRemoval)
	assert.Equal(t, One, got.Turn)
}

func TestPlacingWithoutReserveIsNoop(t *testing.T) {
	s := initialState()
	s.Reserve = Tally{One: 0, Two: 1}
	g := Game{state: s}
	assertNoop(t, &g, 3)
}

func TestMoveSelectTargetProtocol(t *testing.T) {
	g := arranged([]int{0, 4, 10, 14}, []int{16, 18, 20, 22}, One)

	// nothing selected: empty and opponent cells are ignored
	assertNoop(t, &g, 1)
	assertNoop(t, &g, 16)

	playMoves(t, &g, 0)
	assert.Equal(t, 0, g.Snapshot().Selected)

	// clicking the selection again deselects
	playMoves(t, &g, 0)
	assert.Equal(t, NoPosition, g.Snapshot().Selected)

	playMoves(t, &g, 0)
	// occupied targets and non-adjacent cells keep the selection
	assertNoop(t, &g, 4)
	assertNoop(t, &g, 16)
	assertNoop(t, &g, 3)
	assert.Equal(t, 0, g.Snapshot().Selected)

	playMoves(t, &g, 1)
	s := g.Snapshot()
	assert.Equal(t, None, s.Board[0])
	assert.Equal(t, One, s.Board[1])
	assert.Equal(t, NoPosition, s.Selected)
	assert.Equal(t, Two, s.Turn)
	assert.Equal(t, Tally{One: 4, Two: 4}, s.OnBoard)
}

func TestFlyingWithThreePieces(t *testing.T) {
	g := arranged([]int{0, 4, 10}, []int{16, 18, 20, 22}, One)
	s := g.Snapshot()
	assert.True(t, s.Flying(One))
	assert.False(t, s.Flying(Two))
	assert.Equal(t, Flying, s.PhaseOf(One))
	assert.Equal(t, Moving, s.PhaseOf(Two))
	assert.Equal(t, Moving, s.Phase)

	// One flies across the board
	playMoves(t, &g, 0, 12)
	assert.Equal(t, One, g.Snapshot().Board[12])

	// Two, with four pieces, is held to adjacent cells
	playMoves(t, &g, 16)
	assertNoop(t, &g, 5)
	playMoves(t, &g, 17)
	assert.Equal(t, Two, g.Snapshot().Board[17])
}

func TestNoFlyingWhilePlacing(t *testing.T) {
	s := initialState()
	s.Board[0], s.Board[4], s.Board[10] = One, One, One
	s.OnBoard = Tally{One: 3}
	g := Game{state: s}
	assert.False(t, g.Snapshot().Flying(One))
	assert.Equal(t, Placing, g.Snapshot().PhaseOf(One))
}

func TestMoveFormsMillAndCaptureEnablesFlying(t *testing.T) {
	g := arranged([]int{0, 1, 3, 10}, []int{16, 18, 20, 22}, One)

	playMoves(t, &g, 3, 2)
	s := g.Snapshot()
	assert.True(t, s.PendingRemoval)
	assert.Equal(t, One, s.Turn)
	assert.Equal(t, []Mill{{0, 1, 2}}, s.Mills)
	assert.Equal(t, NoPosition, s.Selected)

	playMoves(t, &g, 16)
	s = g.Snapshot()
	assert.Equal(t, Two, s.Turn)
	assert.Equal(t, 3, s.OnBoard.Two)
	assert.Equal(t, None, s.Winner)
	assert.Equal(t, Flying, s.PhaseOf(Two))

	playMoves(t, &g, 18, 5)
	assert.Equal(t, Two, g.Snapshot().Board[5])
}

func TestCaptureToTwoWins(t *testing.T) {
	g := arranged([]int{0, 1, 3, 10}, []int{16, 18, 20}, One)
	playMoves(t, &g, 3, 2, 16)

	s := g.Snapshot()
	assert.Equal(t, One, s.Winner)
	assert.Equal(t, 2, s.OnBoard.Two)

	for pos := 0; pos < Positions; pos++ {
		assertNoop(t, &g, pos)
	}
}

func TestMovingNeverDecidesWinner(t *testing.T) {
	g := arranged([]int{0, 4, 10}, []int{16, 18, 20}, One)
	playMoves(t, &g, 0, 12, 16, 7)
	assert.Equal(t, None, g.Snapshot().Winner)
}

func TestRemovalRejectsOwnAndEmptyCells(t *testing.T) {
	g := arranged([]int{0, 1, 3, 10}, []int{16, 18, 20, 22}, One)
	playMoves(t, &g, 3, 2)
	assertNoop(t, &g, 0)
	assertNoop(t, &g, 3)
	assertNoop(t, &g, 99)
	assert.True(t, g.Snapshot().PendingRemoval)
}

func TestRemovalProtectsMillWhileOthersExposed(t *testing.T) {
	// Two holds the inner top mill plus a loose piece on 22
	g := arranged([]int{0, 1, 3, 10}, []int{16, 17, 18, 22}, One)
	playMoves(t, &g, 3, 2)

	assertNoop(t, &g, 16)
	assertNoop(t, &g, 17)
	playMoves(t, &g, 22)
	assert.Equal(t, None, g.Snapshot().Board[22])
}

func TestRemovalFromFullBoard(t *testing.T) {
	allInMills := func() State {
		s := initialState()
		s.Phase = Moving
		s.Reserve = Tally{}
		for _, pos := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 17} {
			s.Board[pos] = Two
		}
		for _, pos := range []int{11, 12, 13, 14, 15, 16, 18, 19, 20, 21, 22, 23} {
			s.Board[pos] = One
		}
		s.OnBoard = Tally{One: 12, Two: 12}
		s.PendingRemoval = true
		s.Mills = []Mill{{12, 13, 14}}
		return s
	}

	t.Run("every piece in a mill", func(t *testing.T) {
		s := allInMills()
		for pos, c := range s.Board {
			if c == Two {
				require.Truef(t, inAnyMill(CurrentMills(s.Board, Two), pos), "position %d", pos)
			}
		}
		g := Game{state: s}
		playMoves(t, &g, 0)
		assert.Equal(t, None, g.Snapshot().Board[0])
		assert.Equal(t, 11, g.Snapshot().OnBoard.Two)
	})

	t.Run("one piece outside the mills", func(t *testing.T) {
		s := allInMills()
		s.Board[17], s.Board[18] = One, Two
		g := Game{state: s}
		assertNoop(t, &g, 0)
		assertNoop(t, &g, 9)
		playMoves(t, &g, 18)
		assert.Equal(t, None, g.Snapshot().Board[18])
	})
}

func TestResetRestoresInitialState(t *testing.T) {
	g := New()
	playMoves(t, &g, 0, 8, 1, 9, 2, 9)
	require.True(t, g.Snapshot().Over())

	g.Reset()
	fresh := New()
	assert.Equal(t, fresh.Snapshot(), g.Snapshot())

	g = arranged([]int{0, 4, 10}, []int{16, 18, 20, 22}, One)
	playMoves(t, &g, 0)
	g.Reset()
	assert.Equal(t, fresh.Snapshot(), g.Snapshot())
}

func TestSnapshotIsCopy(t *testing.T) {
	g := arranged([]int{0, 1, 3, 10}, []int{16, 18, 20, 22}, One)
	playMoves(t, &g, 3, 2)

	s := g.Snapshot()
	s.Board[0] = Two
	s.Mills[0] = Mill{9, 9, 9}
	assert.Equal(t, One, g.Snapshot().Board[0])
	assert.Equal(t, []Mill{{0, 1, 2}}, g.Snapshot().Mills)
}

func TestTargets(t *testing.T) {
	g := New()
	assert.Len(t, g.Targets(), Positions)

	g = arranged([]int{0, 4, 10, 14}, []int{16, 18, 20, 22}, One)
	assert.Equal(t, []int{0, 4, 10, 14}, g.Targets())
	playMoves(t, &g, 0)
	assert.Equal(t, []int{0, 1, 7}, g.Targets())
}

// TestRandomPlayKeepsInvariants drives games with random clicks and checks
// the bookkeeping after every call.
func TestRandomPlayKeepsInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := New()
		var captured Tally
		for step := 0; step < 3000 && !g.Snapshot().Over(); step++ {
			before := g.Snapshot()
			pos := rng.Intn(Positions+2) - 1
			if targets := g.Targets(); len(targets) > 0 && rng.Intn(4) > 0 {
				pos = targets[rng.Intn(len(targets))]
			}
			changed := g.Select(pos)
			after := g.Snapshot()
			if !changed {
				require.Equal(t, before, after)
				continue
			}
			if before.PendingRemoval {
				captured.add(before.Turn.Opponent(), 1)
				require.Equal(t, before.OnBoard.Of(before.Turn.Opponent())-1, after.OnBoard.Of(before.Turn.Opponent()))
				if after.OnBoard.Of(before.Turn.Opponent()) <= LosingCount {
					require.Equal(t, before.Turn, after.Winner)
				}
			} else {
				require.Equal(t, None, after.Winner)
			}
			for _, p := range []Player{One, Two} {
				require.Equal(t, after.Board.Count(p), after.OnBoard.Of(p))
				require.Equal(t, Cows, after.Reserve.Of(p)+after.OnBoard.Of(p)+captured.Of(p))
			}
			if after.Selected != NoPosition {
				require.False(t, after.PendingRemoval)
				require.NotEqual(t, Placing, after.Phase)
				require.Equal(t, after.Turn, after.Board[after.Selected])
			}
			if after.PendingRemoval {
				require.NotEmpty(t, after.Mills)
				for _, m := range after.Mills {
					require.True(t, owns(after.Board, m, after.Turn))
				}
			}
			if after.Reserve.One+after.Reserve.Two > 0 {
				require.Equal(t, Placing, after.Phase)
			} else {
				require.Equal(t, Moving, after.Phase)
			}
		}
	}
}
