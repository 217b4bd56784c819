package hexmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	cases := []struct {
		size     int
		expected int
	}{
		{size: 3, expected: 30},
		{size: 4, expected: 60},
		{size: 5, expected: 100},
		{size: 6, expected: 120},
		{size: 7, expected: 140},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, Score(tc.size), "size %d", tc.size)
	}
}

func TestResolveClick(t *testing.T) {
	t.Run("Three-cell run explodes and scores 30", func(t *testing.T) {
		// Given: a match-free board with a red run planted at y=2
		board := patternBoard()
		board.set(2, 2, ColorRed)
		board.set(3, 2, ColorRed)
		board.set(4, 2, ColorRed)

		// When: the middle of the run is clicked
		outcome := ResolveClick(board, 3, 2, Policy{})

		// Then: exactly the run explodes for the three-cell score
		require.True(t, outcome.Matched)
		assert.False(t, outcome.Blast)
		assert.Equal(t, 30, outcome.Score)
		assert.False(t, outcome.BombGranted)
		require.ElementsMatch(t, []Position{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}}, outcome.Exploded)

		// Then: the board is settled, no empty cell remains
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				assert.NotEqual(t, Empty, board.At(x, y))
			}
		}
	})

	t.Run("Group below minimum mutates nothing", func(t *testing.T) {
		// Given: a board where every cell is an isolated component
		board := patternBoard()
		before := board.Clone()

		// When: any cell is clicked
		outcome := ResolveClick(board, 3, 3, Policy{})

		// Then: the outcome is unmatched and the grid is byte-identical
		require.False(t, outcome.Matched)
		assert.Zero(t, outcome.Score)
		assert.Empty(t, outcome.Exploded)
		assert.Empty(t, outcome.Fallen)
		assert.Empty(t, outcome.NewBlocks)
		assert.Equal(t, before.Cells, board.Cells)
	})

	t.Run("Five-cell run grants a bomb", func(t *testing.T) {
		// Given: a five-cell run planted at y=2
		board := patternBoard()
		for x := 1; x <= 5; x++ {
			board.set(x, 2, ColorRed)
		}

		// When: the run is clicked
		outcome := ResolveClick(board, 3, 2, Policy{})

		// Then: the run scores 100 and grants a bomb charge
		require.True(t, outcome.Matched)
		assert.Equal(t, 100, outcome.Score)
		assert.True(t, outcome.BombGranted)
		assert.Len(t, outcome.Exploded, 5)
	})

	t.Run("Clicking the bomb marker blasts", func(t *testing.T) {
		// Given: a bomb marker sitting at an interior cell
		board := patternBoard()
		board.set(3, 3, ColorBomb)

		// When: the marker itself is clicked
		outcome := ResolveClick(board, 3, 3, Policy{})

		// Then: the marker and its six neighbors explode at doubled score
		require.True(t, outcome.Matched)
		assert.True(t, outcome.Blast)
		assert.Len(t, outcome.Exploded, 7)
		assert.Equal(t, Score(7)*2, outcome.Score)
	})

	t.Run("Cascade policy settles until stable", func(t *testing.T) {
		// Given: a planted run under the cascading policy
		board := patternBoard()
		board.set(2, 2, ColorRed)
		board.set(3, 2, ColorRed)
		board.set(4, 2, ColorRed)

		// When: the run is clicked
		outcome := ResolveClick(board, 3, 2, Policy{Cascade: true})

		// Then: the settled board holds no remaining matches
		require.True(t, outcome.Matched)
		assert.GreaterOrEqual(t, outcome.Score, 30)
		assert.Empty(t, board.FindMatches())
	})
}

func TestResolveBomb(t *testing.T) {
	t.Run("Interior blast takes the cell and six neighbors", func(t *testing.T) {
		// Given: a full board
		board := patternBoard()

		// When: a bomb detonates at an interior cell
		outcome := ResolveBomb(board, 3, 3, Policy{})

		// Then: seven cells explode at doubled score
		require.True(t, outcome.Matched)
		require.True(t, outcome.Blast)
		assert.Len(t, outcome.Exploded, 7)
		assert.Equal(t, 280, outcome.Score)
		assert.False(t, outcome.BombGranted)
	})

	t.Run("Corner blast shrinks to in-bounds cells", func(t *testing.T) {
		// Given: a full board
		board := patternBoard()

		// When: a bomb detonates in the bottom-left corner
		outcome := ResolveBomb(board, 0, 0, Policy{})

		// Then: only the corner and its two neighbors explode
		require.ElementsMatch(t,
			[]Position{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}},
			outcome.Exploded,
		)
		assert.Equal(t, Score(3)*2, outcome.Score)
	})

	t.Run("Already-empty cells do not count", func(t *testing.T) {
		// Given: a board with two of the blast cells already empty
		board := patternBoard()
		board.Explode([]Position{{X: 3, Y: 4}, {X: 4, Y: 3}})
		board.ApplyGravity()
		board.set(3, 7, Empty)
		board.set(4, 7, Empty)

		// When: a bomb detonates next to the holes
		outcome := ResolveBomb(board, 3, 6, Policy{})

		// Then: empty cells are excluded from the blast set and score
		for _, pos := range outcome.Exploded {
			assert.NotEqual(t, Position{X: 3, Y: 7}, pos)
		}
		assert.Len(t, outcome.Exploded, 6)
		assert.Equal(t, Score(6)*2, outcome.Score)
	})
}
