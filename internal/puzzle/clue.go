package puzzle

// Direction of a word span.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Clue is one entry of a puzzle's clue list. For system puzzles only Number
// and Text are authored; Row, Col and Len are derived from grid geometry.
// Builder puzzles author the geometry directly.
type Clue struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Len    int    `json:"len"`
}

// Clues groups a puzzle's clues by direction.
type Clues struct {
	Across []Clue `json:"across"`
	Down   []Clue `json:"down"`
}
