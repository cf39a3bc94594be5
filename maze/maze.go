package maze

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// GridSize is the side length of the square maze grid.
	GridSize = 6

	// WallCount is the number of walls every submitted board must carry.
	WallCount = 20
)

var (
	ErrWallCount  = errors.New("board must contain exactly 20 distinct walls")
	ErrUnsolvable = errors.New("board has no path from start to target")
)

// Cell is a single grid square.
type Cell struct {
	Row int
	Col int
}

// Key returns the canonical "{row}-{col}" form of a cell.
func (c Cell) Key() string {
	return fmt.Sprintf("%d-%d", c.Row, c.Col)
}

func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < GridSize && c.Col >= 0 && c.Col < GridSize
}

// AdjacentTo reports whether o is exactly one orthogonal step away.
func (c Cell) AdjacentTo(o Cell) bool {
	dr := c.Row - o.Row
	dc := c.Col - o.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// ParseCell parses a "{row}-{col}" key into an in-bounds cell.
func ParseCell(key string) (Cell, error) {
	parts := strings.Split(key, "-")

	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("invalid cell %q", key)
	}

	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])

	if err1 != nil || err2 != nil {
		return Cell{}, fmt.Errorf("invalid cell %q", key)
	}

	cell := Cell{Row: row, Col: col}

	if !cell.InBounds() {
		return Cell{}, fmt.Errorf("cell %q is out of bounds", key)
	}

	return cell, nil
}

// parseWall checks a "{v|h}-{row}-{col}" wall key. A vertical wall at (r,c)
// blocks movement between (r,c-1) and (r,c); a horizontal wall at (r,c)
// blocks movement between (r-1,c) and (r,c).
func parseWall(key string) error {
	parts := strings.Split(key, "-")

	if len(parts) != 3 || (parts[0] != "v" && parts[0] != "h") {
		return fmt.Errorf("invalid wall %q", key)
	}

	row, err1 := strconv.Atoi(parts[1])
	col, err2 := strconv.Atoi(parts[2])

	if err1 != nil || err2 != nil {
		return fmt.Errorf("invalid wall %q", key)
	}

	if !(Cell{Row: row, Col: col}).InBounds() {
		return fmt.Errorf("wall %q is out of bounds", key)
	}

	return nil
}

// Board is a player-built maze: a fixed-size wall set plus the two cells the
// opponent will race between.
type Board struct {
	Walls map[string]struct{}
	Start Cell
	End   Cell
}

// NewBoard builds a board from wire keys, enforcing the wall budget and
// solvability. Client-side checks are advisory only; everything is
// re-validated here.
func NewBoard(wallKeys []string, startKey, endKey string) (*Board, error) {
	start, err := ParseCell(startKey)
	if err != nil {
		return nil, err
	}

	end, err := ParseCell(endKey)
	if err != nil {
		return nil, err
	}

	walls := make(map[string]struct{}, len(wallKeys))
	for _, key := range wallKeys {
		if err := parseWall(key); err != nil {
			return nil, err
		}
		walls[key] = struct{}{}
	}

	// duplicates collapse in the set, so this also rejects padded submissions
	if len(walls) != WallCount {
		return nil, ErrWallCount
	}

	b := &Board{Walls: walls, Start: start, End: end}

	if !IsSolvable(walls, start, end) {
		return nil, ErrUnsolvable
	}

	return b, nil
}

// Blocked reports whether the wall set stops a step between two adjacent
// cells. Out-of-bounds or non-adjacent pairs are treated as blocked.
func (b *Board) Blocked(from, to Cell) bool {
	return blocked(b.Walls, from, to)
}

// WallKeys returns the wall set in stable order, for the end-of-game reveal.
func (b *Board) WallKeys() []string {
	keys := make([]string, 0, len(b.Walls))
	for k := range b.Walls {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func blocked(walls map[string]struct{}, from, to Cell) bool {
	if !from.InBounds() || !to.InBounds() || !from.AdjacentTo(to) {
		return true
	}

	var wall string
	switch {
	case to.Col == from.Col+1:
		wall = fmt.Sprintf("v-%d-%d", from.Row, to.Col)
	case to.Col == from.Col-1:
		wall = fmt.Sprintf("v-%d-%d", from.Row, from.Col)
	case to.Row == from.Row+1:
		wall = fmt.Sprintf("h-%d-%d", to.Row, from.Col)
	default:
		wall = fmt.Sprintf("h-%d-%d", from.Row, from.Col)
	}

	_, hit := walls[wall]
	return hit
}

// IsSolvable runs a breadth-first search from start and reports whether end
// is reachable through the given wall set.
func IsSolvable(walls map[string]struct{}, start, end Cell) bool {
	if !start.InBounds() || !end.InBounds() {
		return false
	}

	if start == end {
		return true
	}

	var visited [GridSize][GridSize]bool
	visited[start.Row][start.Col] = true

	queue := []Cell{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range []Cell{
			{Row: cur.Row - 1, Col: cur.Col},
			{Row: cur.Row + 1, Col: cur.Col},
			{Row: cur.Row, Col: cur.Col - 1},
			{Row: cur.Row, Col: cur.Col + 1},
		} {
			if !next.InBounds() || visited[next.Row][next.Col] {
				continue
			}
			if blocked(walls, cur, next) {
				continue
			}
			if next == end {
				return true
			}
			visited[next.Row][next.Col] = true
			queue = append(queue, next)
		}
	}

	return false
}
