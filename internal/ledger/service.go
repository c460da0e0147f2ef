package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	accountentity "github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger/entity"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger/repo"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/metrics"
)

const (
	DefaultHistoryLimit = 50
	// MaxExchangeTokens bounds a single shop purchase so the point cost
	// cannot overflow.
	MaxExchangeTokens = math.MaxInt64 / ExchangeRate
)

// Service applies wagers, outcome rewards and shop exchanges to account
// balances. Each mutation is a single guarded statement or one transaction.
type Service struct {
	db       *sqlx.DB
	accounts *accountrepo.AccountRepo
	results  *repo.ResultRepo
	clock    clock.Clock
	logger   *zap.SugaredLogger
}

func NewService(db *sqlx.DB, clk clock.Clock, logger *zap.SugaredLogger) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:       db,
		accounts: accountrepo.NewAccountRepo(db),
		results:  repo.NewResultRepo(db),
		clock:    clk,
		logger:   logger,
	}
}

// StartResult reports the wager debited and the balances after it.
type StartResult struct {
	Wager   int64                  `json:"wager"`
	Account *accountentity.Account `json:"user"`
}

// StartGame debits the fixed wager of kind from the account.
func (s *Service) StartGame(ctx context.Context, accountID int64, kind string) (*StartResult, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	rule, _ := RuleFor(k)
	a, err := s.accounts.ApplyDelta(ctx, accountID, -rule.Wager, 0, s.clock.Now())
	if err != nil {
		return nil, balanceError(err, fmt.Sprintf("you need %d tokens to play %s", rule.Wager, rule.Name))
	}
	metrics.RecordGameStarted(string(k))
	return &StartResult{Wager: rule.Wager, Account: a}, nil
}

// OutcomeInput is what the presentation layer reports when a game ends.
type OutcomeInput struct {
	Kind           string
	Won            bool
	PointsEarned   int64
	ElapsedSeconds *float64
}

// RecordOutcome appends a game result and credits its points in one
// transaction. Lost games always credit zero; won games are capped at the
// kind's maximum reward.
func (s *Service) RecordOutcome(ctx context.Context, accountID int64, in OutcomeInput) (*accountentity.Account, error) {
	k, err := ParseKind(in.Kind)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if in.PointsEarned < 0 {
		return nil, apperr.InvalidAmount("points earned cannot be negative")
	}
	if in.ElapsedSeconds != nil && (*in.ElapsedSeconds < 0 || math.IsNaN(*in.ElapsedSeconds) || math.IsInf(*in.ElapsedSeconds, 0)) {
		return nil, apperr.Validation("elapsed time must be a non-negative number")
	}
	rule, _ := RuleFor(k)

	earned := int64(0)
	if in.Won {
		earned = min(in.PointsEarned, rule.MaxReward(in.ElapsedSeconds))
	}
	now := s.clock.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := s.accounts.ApplyDeltaTx(ctx, tx, accountID, 0, earned, now)
	if err != nil {
		return nil, balanceError(err, "balance cannot go below zero")
	}
	gr := &entity.GameResult{
		AccountID:      accountID,
		GameKind:       string(k),
		Won:            in.Won,
		PointsEarned:   earned,
		ElapsedSeconds: in.ElapsedSeconds,
		CreatedAt:      now,
	}
	if err := s.results.InsertTx(ctx, tx, gr); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}
	metrics.RecordOutcome(string(k), in.Won, earned)
	if earned < in.PointsEarned {
		s.logger.Debugw("outcome reward capped", "account_id", accountID, "kind", k, "claimed", in.PointsEarned, "credited", earned)
	}
	return a, nil
}

// ExchangeTokensForPoints buys tokenAmount tokens at ExchangeRate points each.
func (s *Service) ExchangeTokensForPoints(ctx context.Context, accountID, tokenAmount int64) (*accountentity.Account, error) {
	if tokenAmount < 1 {
		return nil, apperr.InvalidAmount("enter at least 1 token")
	}
	if tokenAmount > MaxExchangeTokens {
		return nil, apperr.InvalidAmount("amount is too large")
	}
	cost := tokenAmount * ExchangeRate
	a, err := s.accounts.ApplyDelta(ctx, accountID, tokenAmount, -cost, s.clock.Now())
	if err != nil {
		return nil, balanceError(err, "not enough points")
	}
	metrics.RecordExchange(tokenAmount)
	s.logger.Infow("tokens purchased", "account_id", accountID, "tokens", tokenAmount, "cost", cost)
	return a, nil
}

// History lists the account's most recent results, newest first.
func (s *Service) History(ctx context.Context, accountID int64, limit int) ([]entity.GameResult, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	out, err := s.results.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func balanceError(err error, insufficientMsg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("user not found")
	case errors.Is(err, accountrepo.ErrInsufficientBalance):
		return apperr.InsufficientFunds(insufficientMsg)
	default:
		return apperr.Internal(err)
	}
}
