// Package leaderboard projects account balances and game results into a
// ranked view.
package leaderboard

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/leaderboard/repo"
)

const MaxLimit = 100

type (
	Entry    = repo.Entry
	Standing = repo.Standing
)

type Service struct {
	repo   *repo.LeaderboardRepo
	logger *zap.SugaredLogger
}

func NewService(db *sqlx.DB, logger *zap.SugaredLogger) *Service {
	return &Service{repo: repo.NewLeaderboardRepo(db), logger: logger}
}

// Top returns up to limit entries. Non-positive or oversized limits fall
// back to MaxLimit.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	out, err := s.repo.Top(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// RankOf returns the 1-based position of accountID in the Top order.
func (s *Service) RankOf(ctx context.Context, accountID int64) (*Standing, error) {
	st, err := s.repo.Standing(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return st, nil
}
