package puzzle

import "errors"

// ErrInvalidStructure rejects builder puzzles whose words cannot all be
// graded as one connected crossword.
var ErrInvalidStructure = errors.New("invalid puzzle structure: words must be connected")

// ValidateStructure enforces the pre-persistence invariant for builder
// puzzles: at least one Across word, at least one Down word, and at least one
// cell where an Across span and a Down span cross. Disconnected word islands
// are rejected.
func ValidateStructure(c Clues) error {
	if len(c.Across) == 0 || len(c.Down) == 0 {
		return ErrInvalidStructure
	}
	for _, a := range c.Across {
		for _, d := range c.Down {
			if crosses(a, d) {
				return nil
			}
		}
	}
	return ErrInvalidStructure
}

// crosses reports whether the down span passes through a cell of the across
// span: the down clue's column falls inside the across run and the across
// clue's row falls inside the down run.
func crosses(a, d Clue) bool {
	return d.Col >= a.Col && d.Col < a.Col+a.Len &&
		a.Row >= d.Row && a.Row < d.Row+d.Len
}
