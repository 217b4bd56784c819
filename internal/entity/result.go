package entity

const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomeTie  = "tie"
)

const (
	trophiesPerWin = 50
	// One coin per 10 points of final score.
	coinsScoreDivisor = 10
	// A win by this margin or more earns the third star.
	threeStarMargin = 10
)

// GameResult is one player's settlement after a finished session: outcome,
// reward deltas, and the player's updated totals.
type GameResult struct {
	SessionID    string `json:"session_id"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	OpponentName string `json:"opponent_name"`

	PlayerScore   int    `json:"player_score"`
	OpponentScore int    `json:"opponent_score"`
	Outcome       string `json:"outcome"`

	TrophiesGained int `json:"trophies_gained"`
	CoinsGained    int `json:"coins_gained"`
	StarsEarned    int `json:"stars_earned"`

	NewTrophyCount int `json:"new_trophy_count"`
	NewCoinCount   int `json:"new_coin_count"`
	NewStarCount   int `json:"new_star_count"`
}

// CalculateRewards - computes one player's settlement from the two final
// scores and the player's current totals. Trophies never drop below zero.
func CalculateRewards(playerScore, opponentScore int, user *User) GameResult {
	var outcome string
	var trophies int

	switch {
	case playerScore > opponentScore:
		outcome = OutcomeWin
		trophies = trophiesPerWin
	case playerScore < opponentScore:
		outcome = OutcomeLose
		trophies = -trophiesPerWin
	default:
		outcome = OutcomeTie
	}

	coins := playerScore / coinsScoreDivisor
	if coins < 0 {
		coins = 0
	}

	stars := 1
	if outcome == OutcomeWin {
		stars = 2
		if playerScore-opponentScore >= threeStarMargin {
			stars = 3
		}
	}

	newTrophies := user.Trophies + trophies
	if newTrophies < 0 {
		newTrophies = 0
	}

	return GameResult{
		PlayerID:       user.ID,
		PlayerName:     user.Name,
		PlayerScore:    playerScore,
		OpponentScore:  opponentScore,
		Outcome:        outcome,
		TrophiesGained: trophies,
		CoinsGained:    coins,
		StarsEarned:    stars,
		NewTrophyCount: newTrophies,
		NewCoinCount:   user.Coins + coins,
		NewStarCount:   user.Stars + stars,
	}
}
