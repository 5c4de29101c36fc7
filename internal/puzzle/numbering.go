package puzzle

import "fmt"

// Numbering assigns each clue its number and geometry. Two policies coexist
// and are never merged: system (imported) puzzles derive everything from grid
// geometry, builder puzzles number by authoring order. Selection is by puzzle
// provenance via ForOrigin.
type Numbering interface {
	Apply(g Grid, c *Clues) error
}

func ForOrigin(system bool) Numbering {
	if system {
		return GeometryDerived{}
	}
	return AuthoringOrder{}
}

// GeometryDerived computes each clue's (row, col, len) purely from the grid:
// cells are scanned in row-major order and numbered when they start an Across
// or a Down word; clue numbers are then matched against those cells.
type GeometryDerived struct{}

func (GeometryDerived) Apply(g Grid, c *Clues) error {
	if err := g.Validate(); err != nil {
		return err
	}

	starts := numberCells(g)

	for i := range c.Across {
		if err := place(g, &c.Across[i], Across, starts); err != nil {
			return err
		}
	}
	for i := range c.Down {
		if err := place(g, &c.Down[i], Down, starts); err != nil {
			return err
		}
	}
	return nil
}

type cellPos struct{ row, col int }

// numberCells assigns sequence numbers in scan order. A cell gets a number
// iff it is fillable and starts an Across word (left edge or blocked left
// neighbor) or a Down word (top edge or blocked upper neighbor). A cell gets
// exactly one number even when it starts both.
func numberCells(g Grid) map[int]cellPos {
	starts := make(map[int]cellPos)
	next := 1
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if g.IsBlocked(r, c) {
				continue
			}
			if g.IsBlocked(r, c-1) || g.IsBlocked(r-1, c) {
				starts[next] = cellPos{row: r, col: c}
				next++
			}
		}
	}
	return starts
}

// place matches one clue to its numbered cell and walks the declared
// direction to measure length. The declared direction is trusted even when
// the grid does not actually start a word that way at the cell; the walk then
// yields a degenerate length-1 span. Inconsistent data is kept visible, not
// reclassified.
func place(g Grid, cl *Clue, dir Direction, starts map[int]cellPos) error {
	pos, ok := starts[cl.Number]
	if !ok {
		return fmt.Errorf("%s clue %d: no cell carries that number", dir, cl.Number)
	}
	cl.Row, cl.Col = pos.row, pos.col
	cl.Len = wordLength(g, pos.row, pos.col, dir)
	return nil
}

// wordLength counts fillable cells from (r,c) along dir up to a blocked cell
// or the grid boundary.
func wordLength(g Grid, r, c int, dir Direction) int {
	dr, dc := 0, 1
	if dir == Down {
		dr, dc = 1, 0
	}
	n := 0
	for !g.IsBlocked(r, c) {
		n++
		r += dr
		c += dc
	}
	return n
}

// AuthoringOrder numbers clues by their position in each direction list,
// independent of grid geometry. Builder-created puzzles carry their geometry
// as authored; it is left untouched.
type AuthoringOrder struct{}

func (AuthoringOrder) Apply(_ Grid, c *Clues) error {
	for i := range c.Across {
		c.Across[i].Number = i + 1
	}
	for i := range c.Down {
		c.Down[i].Number = i + 1
	}
	return nil
}
