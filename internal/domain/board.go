package domain

// Player identifies who owns a board cell.
type Player uint8

const (
	None Player = iota
	One
	Two
)

// Opponent returns the other player; None has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case One:
		return Two
	case Two:
		return One
	default:
		return None
	}
}

func (p Player) String() string {
	switch p {
	case One:
		return "1"
	case Two:
		return "2"
	default:
		return "-"
	}
}

// Positions is the number of points on the board.
const Positions = 24

// Board holds the owner of each of the 24 points. Points 0-7 are the outer
// ring, 8-15 the middle ring and 16-23 the inner ring, each numbered
// clockwise from its top-left corner.
type Board [Positions]Player

// Count returns how many cells p occupies.
func (b Board) Count(p Player) int {
	n := 0
	for _, c := range b {
		if c == p {
			n++
		}
	}
	return n
}

// Mill is a group of three positions on one line.
type Mill [3]int

// Contains reports whether pos is one of the mill's positions.
func (m Mill) Contains(pos int) bool {
	return m[0] == pos || m[1] == pos || m[2] == pos
}

var (
	mills     []Mill
	neighbors [Positions][]int
)

func init() {
	for ring := 0; ring < 3; ring++ {
		base := ring * 8
		// corners sit on even offsets, so each side runs corner-mid-corner
		for side := 0; side < 4; side++ {
			c := 2 * side
			mills = append(mills, Mill{base + c, base + c + 1, base + (c+2)%8})
		}
		for i := 0; i < 8; i++ {
			link(base+i, base+(i+1)%8)
		}
	}
	for mid := 1; mid < 8; mid += 2 {
		mills = append(mills, Mill{mid, mid + 8, mid + 16})
		link(mid, mid+8)
		link(mid+8, mid+16)
	}
}

func link(a, b int) {
	neighbors[a] = append(neighbors[a], b)
	neighbors[b] = append(neighbors[b], a)
}

func valid(pos int) bool { return pos >= 0 && pos < Positions }

// Mills returns the 16 mill groups. The result is a copy.
func Mills() []Mill {
	out := make([]Mill, len(mills))
	copy(out, mills)
	return out
}

// Neighbors returns the positions adjacent to pos, or nil when pos is off
// the board. The result is a copy.
func Neighbors(pos int) []int {
	if !valid(pos) {
		return nil
	}
	out := make([]int, len(neighbors[pos]))
	copy(out, neighbors[pos])
	return out
}

// Topology returns the adjacency list of every position.
func Topology() [Positions][]int {
	var out [Positions][]int
	for pos := range out {
		out[pos] = Neighbors(pos)
	}
	return out
}

// Adjacent reports whether a and b share a line segment.
func Adjacent(a, b int) bool {
	if !valid(a) || !valid(b) {
		return false
	}
	for _, n := range neighbors[a] {
		if n == b {
			return true
		}
	}
	return false
}

// IsMill reports whether player owns a complete mill through pos.
func IsMill(b Board, pos int, player Player) bool {
	return len(millsThrough(b, pos, player)) > 0
}

// CurrentMills returns every mill fully occupied by player.
func CurrentMills(b Board, player Player) []Mill {
	var out []Mill
	for _, m := range mills {
		if owns(b, m, player) {
			out = append(out, m)
		}
	}
	return out
}

func millsThrough(b Board, pos int, player Player) []Mill {
	if player == None || !valid(pos) {
		return nil
	}
	var out []Mill
	for _, m := range mills {
		if m.Contains(pos) && owns(b, m, player) {
			out = append(out, m)
		}
	}
	return out
}

func owns(b Board, m Mill, player Player) bool {
	return b[m[0]] == player && b[m[1]] == player && b[m[2]] == player
}

// inAnyMill reports whether pos belongs to one of the given mills.
func inAnyMill(ms []Mill, pos int) bool {
	for _, m := range ms {
		if m.Contains(pos) {
			return true
		}
	}
	return false
}
