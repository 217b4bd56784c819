package hexmatch

import (
	"math/rand"
)

// Board dimensions: 7 columns, 8 rows.
const (
	Width  = 7
	Height = 8
)

const maxRegenerateAttempts = 100

// Color is a cell value: one of six ordinary colors, the special Bomb
// marker, or the Empty sentinel.
type Color string

const (
	ColorPurple Color = "Purple"
	ColorGreen  Color = "Green"
	ColorBlue   Color = "Blue"
	ColorYellow Color = "Yellow"
	ColorRed    Color = "Red"
	ColorPink   Color = "Pink"

	ColorBomb Color = "Bomb"
	Empty     Color = "Empty"
)

// Palette - the ordinary colors a generated or refilled cell can take.
// The Bomb marker and the Empty sentinel are never spawned randomly.
var Palette = []Color{ColorPurple, ColorGreen, ColorBlue, ColorYellow, ColorRed, ColorPink}

// Position is an (x, y) cell coordinate. Origin is the bottom-left corner,
// y grows upward. This orientation is the single source of truth: it is
// never flipped, not even at the transport boundary.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BlockMove records one cell falling from From to To during gravity.
type BlockMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// NewBlock records a freshly spawned cell and its color.
type NewBlock struct {
	Pos   Position `json:"pos"`
	Color Color    `json:"color"`
}

// Board is a Width x Height grid stored row-major as Cells[y][x].
type Board struct {
	Cells [][]Color `json:"cells"`
}

// NewBoard - generates a random board that has at least one legal move.
func NewBoard() *Board {
	board := &Board{Cells: emptyCells()}
	board.Regenerate()

	return board
}

func emptyCells() [][]Color {
	cells := make([][]Color, Height)
	for y := range cells {
		cells[y] = make([]Color, Width)
		for x := range cells[y] {
			cells[y][x] = Empty
		}
	}

	return cells
}

func randomColor() Color {
	return Palette[rand.Intn(len(Palette))] //nolint: gosec // not a security context
}

// InBounds reports whether (x, y) lies on the grid.
func (that *Board) InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// At returns the cell value at (x, y). The position must be in bounds.
func (that *Board) At(x, y int) Color {
	return that.Cells[y][x]
}

func (that *Board) set(x, y int, color Color) {
	that.Cells[y][x] = color
}

// Clone returns a deep copy of the board. Resolution always runs on a
// clone so a failure can never leave a session with a half-mutated grid.
func (that *Board) Clone() *Board {
	cells := make([][]Color, len(that.Cells))
	for y, row := range that.Cells {
		cells[y] = make([]Color, len(row))
		copy(cells[y], row)
	}

	return &Board{Cells: cells}
}

// Neighbors - returns the in-bounds hexagonal neighbors of (x, y).
//
// Four neighbors are axis-aligned. The two diagonal neighbors depend on row
// parity: even rows connect up-left and down-left, odd rows connect up-right
// and down-right. That parity rule is what makes the rectangular storage a
// valid hexagonal tiling; match groups and bomb blasts both depend on it.
func (that *Board) Neighbors(x, y int) []Position {
	directions := [6][2]int{
		{0, 1},  // up
		{0, -1}, // down
		{1, 0},  // right
		{-1, 0}, // left
	}

	if y%2 == 0 {
		directions[4] = [2]int{-1, 1}  // up-left
		directions[5] = [2]int{-1, -1} // down-left
	} else {
		directions[4] = [2]int{1, 1}  // up-right
		directions[5] = [2]int{1, -1} // down-right
	}

	neighbors := make([]Position, 0, 6)
	for _, d := range directions {
		nx, ny := x+d[0], y+d[1]
		if that.InBounds(nx, ny) {
			neighbors = append(neighbors, Position{X: nx, Y: ny})
		}
	}

	return neighbors
}

// floodFill collects the connected component of cells matching the color of
// (x, y), walking an explicit stack instead of recursing. Cells are visited
// in neighbor-list order, which keeps the traversal deterministic for test
// fixtures; the resulting component does not depend on the order.
func (that *Board) floodFill(x, y int, color Color, visited map[Position]bool) []Position {
	start := Position{X: x, Y: y}
	if visited[start] || that.At(x, y) != color {
		return nil
	}

	group := make([]Position, 0, 8)
	stack := []Position{start}
	visited[start] = true

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, pos)

		for _, n := range that.Neighbors(pos.X, pos.Y) {
			if !visited[n] && that.At(n.X, n.Y) == color {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}

	return group
}

// ConnectedGroup returns the same-color connected component containing
// (x, y), including the cell itself.
func (that *Board) ConnectedGroup(x, y int) []Position {
	return that.floodFill(x, y, that.At(x, y), make(map[Position]bool))
}

// FindMatches - partitions all non-empty cells into maximal same-color
// connected components and returns every component of size >= 3.
func (that *Board) FindMatches() [][]Position {
	visited := make(map[Position]bool)
	var matches [][]Position

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			pos := Position{X: x, Y: y}
			if visited[pos] {
				continue
			}

			color := that.At(x, y)
			if color == Empty {
				continue
			}

			group := that.floodFill(x, y, color, visited)
			if len(group) >= 3 {
				matches = append(matches, group)
			}
		}
	}

	return matches
}

// Explode marks the given cells empty. Pure grid mutation, nothing else.
func (that *Board) Explode(positions []Position) {
	for _, pos := range positions {
		that.set(pos.X, pos.Y, Empty)
	}
}

// ApplyGravity - compacts every column downward (toward y=0), preserving
// the relative order of the surviving cells, and returns the (from, to)
// moves of cells whose y changed. Columns are independent of each other.
func (that *Board) ApplyGravity() []BlockMove {
	var moves []BlockMove

	for x := 0; x < Width; x++ {
		newY := 0
		for y := 0; y < Height; y++ {
			color := that.At(x, y)
			if color == Empty {
				continue
			}

			if y != newY {
				that.set(x, newY, color)
				that.set(x, y, Empty)
				moves = append(moves, BlockMove{
					From: Position{X: x, Y: y},
					To:   Position{X: x, Y: newY},
				})
			}
			newY++
		}
	}

	return moves
}

// FillEmptySpaces - fills the contiguous empty run at the top of each
// column with random colors and returns the spawned cells.
//
// Precondition: gravity has already run, so every column's empty cells sit
// above its non-empty cells. Mid-column holes cannot exist here.
func (that *Board) FillEmptySpaces() []NewBlock {
	var blocks []NewBlock

	for x := 0; x < Width; x++ {
		start := Height
		for y := Height - 1; y >= 0; y-- {
			if that.At(x, y) != Empty {
				break
			}
			start = y
		}

		// Spawn bottom-to-top so the delta lists cells in falling order.
		for y := start; y < Height; y++ {
			color := randomColor()
			that.set(x, y, color)
			blocks = append(blocks, NewBlock{
				Pos:   Position{X: x, Y: y},
				Color: color,
			})
		}
	}

	return blocks
}

// HasPossibleMoves reports whether at least one legal move exists.
func (that *Board) HasPossibleMoves() bool {
	return len(that.FindMatches()) > 0
}

// Regenerate - replaces the grid with a fresh random board that has at
// least one legal move. After a bounded number of random attempts it falls
// back to forcing a 3-run, so a player can never face a dead board.
func (that *Board) Regenerate() {
	for attempt := 0; attempt < maxRegenerateAttempts; attempt++ {
		that.randomize()
		if that.HasPossibleMoves() {
			return
		}
	}

	that.randomize()
	color := randomColor()
	that.set(2, 2, color)
	that.set(3, 2, color)
	that.set(4, 2, color)
}

func (that *Board) randomize() {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			that.set(x, y, randomColor())
		}
	}
}
