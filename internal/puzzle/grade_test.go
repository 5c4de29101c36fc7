package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrect(t *testing.T) {
	answer := Grid{
		{"T", "O", "P"},
		{"A", Blocked, "E"},
		{"P", "E", "N"},
	}

	cases := []struct {
		name      string
		submitted Grid
		want      bool
	}{
		{
			"exact match",
			Grid{{"T", "O", "P"}, {"A", Blocked, "E"}, {"P", "E", "N"}},
			true,
		},
		{
			"case differs",
			Grid{{"t", "o", "p"}, {"a", Blocked, "e"}, {"p", "e", "n"}},
			true,
		},
		{
			"blocked cell content ignored",
			Grid{{"T", "O", "P"}, {"A", "Z", "E"}, {"P", "E", "N"}},
			true,
		},
		{
			"one wrong fillable cell",
			Grid{{"T", "O", "P"}, {"A", Blocked, "E"}, {"P", "E", "X"}},
			false,
		},
		{
			"missing row",
			Grid{{"T", "O", "P"}, {"A", Blocked, "E"}},
			false,
		},
		{
			"ragged row",
			Grid{{"T", "O", "P"}, {"A", Blocked}, {"P", "E", "N"}},
			false,
		},
		{
			"empty submission",
			Grid{},
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Correct(answer, tc.submitted))
		})
	}
}

func TestCorrect_BlockedMismatchFails(t *testing.T) {
	// A submission that fills where the answer blocks has a different shape
	// of playable cells; the fillable comparison still catches it because
	// the answer's blocked cells are the ones skipped, not the submission's.
	answer := Grid{{"A", Blocked}}
	submitted := Grid{{Blocked, "B"}}
	assert.False(t, Correct(answer, submitted))
}
