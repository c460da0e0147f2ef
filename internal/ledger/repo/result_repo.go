package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger/entity"
)

// ResultRepo provides data access for the game_results table.
type ResultRepo struct {
	db *sqlx.DB
}

func NewResultRepo(db *sqlx.DB) *ResultRepo { return &ResultRepo{db: db} }

// InsertTx appends a result inside the caller's transaction and sets its id.
func (r *ResultRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, gr *entity.GameResult) error {
	q := tx.Rebind(`INSERT INTO game_results (account_id, game_kind, won, points_earned, elapsed_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := tx.QueryRowxContext(ctx, q,
		gr.AccountID, gr.GameKind, gr.Won, gr.PointsEarned, gr.ElapsedSeconds, gr.CreatedAt,
	).Scan(&gr.ID); err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

// ListByAccount returns the newest results of an account first.
func (r *ResultRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]entity.GameResult, error) {
	q := r.db.Rebind(`SELECT id, account_id, game_kind, won, points_earned, elapsed_seconds, created_at
		FROM game_results WHERE account_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`)
	out := []entity.GameResult{}
	if err := r.db.SelectContext(ctx, &out, q, accountID, limit); err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	return out, nil
}
