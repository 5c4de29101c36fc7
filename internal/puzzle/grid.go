package puzzle

import (
	"errors"
	"fmt"
)

// Blocked marks an opaque cell that is never part of a word. Fillable cells
// hold "" (player must supply the letter) or a pre-filled hint letter.
const Blocked = "."

// Grid is a rectangular board of cells, rows x cols. It is a transient
// working copy built per request from storage; nothing caches it across
// requests.
type Grid [][]string

func (g Grid) Rows() int { return len(g) }

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.Rows() && c >= 0 && c < g.Cols()
}

// IsBlocked reports whether (r,c) is a blocked cell. Out-of-bounds cells
// count as blocked so word walks stop at the grid edge.
func (g Grid) IsBlocked(r, c int) bool {
	return !g.InBounds(r, c) || g[r][c] == Blocked
}

// Validate checks that the grid is non-empty, rectangular and has at least
// one fillable cell.
func (g Grid) Validate() error {
	if g.Rows() == 0 || g.Cols() == 0 {
		return errors.New("grid is empty")
	}
	fillable := 0
	for r, row := range g {
		if len(row) != g.Cols() {
			return fmt.Errorf("grid is not rectangular: row %d has %d cells, want %d", r, len(row), g.Cols())
		}
		for c := range row {
			if !g.IsBlocked(r, c) {
				fillable++
			}
		}
	}
	if fillable == 0 {
		return errors.New("grid has no fillable cells")
	}
	return nil
}

// SameShape reports whether two grids have equal dimensions.
func (g Grid) SameShape(o Grid) bool {
	if g.Rows() != o.Rows() {
		return false
	}
	for r := range g {
		if len(g[r]) != len(o[r]) {
			return false
		}
	}
	return true
}
