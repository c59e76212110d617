package models

// LeaderboardEntry is one ranked account
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
	XP          int64  `json:"xp"`
	Level       int    `json:"level"`
}
