package entity

import "time"

// GameResult is an append-only row of game_results.
type GameResult struct {
	ID             int64     `db:"id" json:"id"`
	AccountID      int64     `db:"account_id" json:"-"`
	GameKind       string    `db:"game_kind" json:"game_name"`
	Won            bool      `db:"won" json:"won"`
	PointsEarned   int64     `db:"points_earned" json:"points_earned"`
	ElapsedSeconds *float64  `db:"elapsed_seconds" json:"time_taken,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
