package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Entry is one leaderboard row.
type Entry struct {
	ID          int64  `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"display_name"`
	Points      int64  `db:"points" json:"points"`
	Wins        int64  `db:"wins" json:"wins"`
	TotalGames  int64  `db:"total_games" json:"total_games"`
}

// Standing is an account's place in the leaderboard order.
type Standing struct {
	Rank       int64 `db:"rank" json:"rank"`
	Points     int64 `db:"points" json:"points"`
	Wins       int64 `db:"wins" json:"wins"`
	TotalGames int64 `db:"total_games" json:"total_games"`
}

// LeaderboardRepo aggregates accounts and game_results. Order is points
// descending then created_at and id ascending.
type LeaderboardRepo struct {
	db *sqlx.DB
}

func NewLeaderboardRepo(db *sqlx.DB) *LeaderboardRepo { return &LeaderboardRepo{db: db} }

// Top returns the first limit accounts with their win and game counts.
func (r *LeaderboardRepo) Top(ctx context.Context, limit int) ([]Entry, error) {
	q := r.db.Rebind(`SELECT a.id, a.username, a.display_name, a.points,
		COUNT(CASE WHEN gr.won = TRUE THEN 1 END) AS wins,
		COUNT(gr.id) AS total_games
		FROM accounts a
		LEFT JOIN game_results gr ON gr.account_id = a.id
		GROUP BY a.id, a.username, a.display_name, a.points, a.created_at
		ORDER BY a.points DESC, a.created_at ASC, a.id ASC
		LIMIT ?`)
	out := []Entry{}
	if err := r.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	return out, nil
}

// Standing computes the rank of one account or returns sql.ErrNoRows.
func (r *LeaderboardRepo) Standing(ctx context.Context, accountID int64) (*Standing, error) {
	q := r.db.Rebind(`SELECT
		1 + (SELECT COUNT(*) FROM accounts o
			WHERE o.points > a.points
			OR (o.points = a.points AND o.created_at < a.created_at)
			OR (o.points = a.points AND o.created_at = a.created_at AND o.id < a.id)) AS rank,
		a.points,
		(SELECT COUNT(*) FROM game_results gr WHERE gr.account_id = a.id AND gr.won = TRUE) AS wins,
		(SELECT COUNT(*) FROM game_results gr WHERE gr.account_id = a.id) AS total_games
		FROM accounts a WHERE a.id = ?`)
	var s Standing
	if err := r.db.GetContext(ctx, &s, q, accountID); err != nil {
		return nil, err
	}
	return &s, nil
}
