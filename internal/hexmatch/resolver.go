package hexmatch

// MinMatchSize - an ordinary click must hit a connected group of at least
// this many same-colored cells to resolve.
const MinMatchSize = 3

// BombBonusThreshold - a non-bomb match of this size or larger grants the
// acting player one bomb charge.
const BombBonusThreshold = 5

const baseScoreUnit = 10

// Policy selects between the two settle behaviors observed in the wild.
// Single-resolution (Cascade=false) is the authoritative default: explode,
// one gravity pass, one refill, done. The cascading variant repeats the
// settle until no match remains, accumulating score and deltas.
type Policy struct {
	Cascade bool
}

// Outcome is the structured delta of one resolved action.
type Outcome struct {
	// Matched is false for an ordinary click on a group smaller than
	// MinMatchSize. Such an action mutates nothing.
	Matched bool
	// Blast is true when the action resolved as a bomb blast (explicit bomb
	// or a click on the Bomb marker), which doubles the score.
	Blast bool

	Score       int
	BombGranted bool

	Exploded  []Position
	Fallen    []BlockMove
	NewBlocks []NewBlock
}

// Score - points for exploding n cells: 3=30, 4=60, 5=100, 6+=20n.
func Score(n int) int {
	switch n {
	case 3:
		return baseScoreUnit * 3
	case 4:
		return baseScoreUnit * 6
	case 5:
		return baseScoreUnit * 10
	default:
		return baseScoreUnit * n * 2
	}
}

// ResolveClick - resolves an ordinary click at (x, y) against the board.
//
// The affected set is the same-color connected group containing the clicked
// cell. Clicking the Bomb marker itself triggers a blast instead of a color
// match. A group below MinMatchSize leaves the board untouched and returns
// an unmatched outcome. The caller must have validated bounds and that the
// cell is not empty.
func ResolveClick(board *Board, x, y int, policy Policy) *Outcome {
	if board.At(x, y) == ColorBomb {
		return blast(board, x, y, policy)
	}

	group := board.ConnectedGroup(x, y)
	if len(group) < MinMatchSize {
		return &Outcome{}
	}

	outcome := &Outcome{
		Matched:     true,
		Score:       Score(len(group)),
		BombGranted: len(group) >= BombBonusThreshold,
		Exploded:    group,
	}

	board.Explode(group)
	settle(board, outcome, policy)

	return outcome
}

// ResolveBomb - resolves a bomb detonation centered at (x, y): the center
// plus all its neighbors, minus cells that are already empty. No minimum
// group size applies; the score is doubled.
func ResolveBomb(board *Board, x, y int, policy Policy) *Outcome {
	return blast(board, x, y, policy)
}

func blast(board *Board, x, y int, policy Policy) *Outcome {
	positions := make([]Position, 0, 7)
	if board.At(x, y) != Empty {
		positions = append(positions, Position{X: x, Y: y})
	}
	for _, n := range board.Neighbors(x, y) {
		if board.At(n.X, n.Y) != Empty {
			positions = append(positions, n)
		}
	}

	outcome := &Outcome{
		Matched:  true,
		Blast:    true,
		Score:    Score(len(positions)) * 2,
		Exploded: positions,
	}

	board.Explode(positions)
	settle(board, outcome, policy)

	return outcome
}

// settle runs gravity and refill after the initial explosion, then, under
// the cascading policy, keeps exploding any matches the refill produced
// until the board is stable.
func settle(board *Board, outcome *Outcome, policy Policy) {
	outcome.Fallen = append(outcome.Fallen, board.ApplyGravity()...)
	outcome.NewBlocks = append(outcome.NewBlocks, board.FillEmptySpaces()...)

	if !policy.Cascade {
		return
	}

	for {
		matches := board.FindMatches()
		if len(matches) == 0 {
			return
		}

		var positions []Position
		for _, match := range matches {
			positions = append(positions, match...)
		}

		outcome.Exploded = append(outcome.Exploded, positions...)
		outcome.Score += Score(len(positions))

		board.Explode(positions)
		outcome.Fallen = append(outcome.Fallen, board.ApplyGravity()...)
		outcome.NewBlocks = append(outcome.NewBlocks, board.FillEmptySpaces()...)
	}
}
