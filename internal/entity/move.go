package entity

import "github.com/hexblast/hexblast-backend/internal/hexmatch"

// MoveResult is the structured result of one resolved (or rejected-as-no-op)
// board action, in the shape the client renders from.
type MoveResult struct {
	ScoreGained int `json:"score_gained"`
	TotalScore  int `json:"total_score"`
	Round       int `json:"round"`
	MovesLeft   int `json:"moves_left"`

	Board     *hexmatch.Board      `json:"board"`
	Exploded  []hexmatch.Position  `json:"exploded"`
	Fallen    []hexmatch.BlockMove `json:"fallen"`
	NewBlocks []hexmatch.NewBlock  `json:"new_blocks"`

	// BoardRegenerated is set when the settled board had no legal move left
	// and was replaced wholesale.
	BoardRegenerated bool `json:"board_regenerated"`

	GameOver bool   `json:"game_over"`
	Winner   string `json:"winner,omitempty"`

	ClickedX int `json:"clicked_x"`
	ClickedY int `json:"clicked_y"`
}
