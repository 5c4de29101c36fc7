package puzzle

import "strings"

// Correct performs the full-grid comparison of a submitted solution against
// the stored answer: equal dimensions, cell-by-cell, case-insensitive.
// Blocked cells carry no submitted value and are not checked. Any mismatch
// in a fillable cell (or a shape mismatch) grades the submission wrong.
func Correct(answer, submitted Grid) bool {
	if !answer.SameShape(submitted) {
		return false
	}
	for r := range answer {
		for c := range answer[r] {
			if answer.IsBlocked(r, c) {
				continue
			}
			if !strings.EqualFold(answer[r][c], submitted[r][c]) {
				return false
			}
		}
	}
	return true
}
