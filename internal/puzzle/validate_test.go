package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStructure(t *testing.T) {
	across := Clue{Number: 1, Row: 0, Col: 0, Len: 3}
	down := Clue{Number: 1, Row: 0, Col: 1, Len: 3}

	t.Run("crossing pair accepted", func(t *testing.T) {
		err := ValidateStructure(Clues{Across: []Clue{across}, Down: []Clue{down}})
		assert.NoError(t, err)
	})

	t.Run("across only rejected", func(t *testing.T) {
		err := ValidateStructure(Clues{Across: []Clue{across}})
		require.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("down only rejected", func(t *testing.T) {
		err := ValidateStructure(Clues{Down: []Clue{down}})
		require.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("disjoint words rejected", func(t *testing.T) {
		// The down word sits entirely outside the across run.
		apart := Clue{Number: 2, Row: 5, Col: 5, Len: 3}
		err := ValidateStructure(Clues{Across: []Clue{across}, Down: []Clue{apart}})
		require.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("one crossing among many is enough", func(t *testing.T) {
		apart := Clue{Number: 2, Row: 5, Col: 5, Len: 3}
		err := ValidateStructure(Clues{
			Across: []Clue{across},
			Down:   []Clue{apart, down},
		})
		assert.NoError(t, err)
	})
}

func TestCrosses_Boundaries(t *testing.T) {
	a := Clue{Row: 2, Col: 1, Len: 3} // cells (2,1)(2,2)(2,3)
	cases := []struct {
		name string
		d    Clue
		want bool
	}{
		{"through first cell", Clue{Row: 0, Col: 1, Len: 4}, true},
		{"through last cell", Clue{Row: 2, Col: 3, Len: 2}, true},
		{"one column past the end", Clue{Row: 0, Col: 4, Len: 4}, false},
		{"ends one row above", Clue{Row: 0, Col: 2, Len: 2}, false},
		{"starts one row below", Clue{Row: 3, Col: 2, Len: 2}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, crosses(a, tc.d))
		})
	}
}
