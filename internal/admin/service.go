package admin

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/metrics"
)

const (
	SearchLimit = 20
	ListLimit   = 500
	// MaxDelta bounds a single admin balance adjustment.
	MaxDelta = int64(1_000_000_000_000)
)

// Service gates cross-account mutations by the actor's role.
type Service struct {
	accounts *accountrepo.AccountRepo
	clock    clock.Clock
	logger   *zap.SugaredLogger
}

func NewService(db *sqlx.DB, clk clock.Clock, logger *zap.SugaredLogger) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{accounts: accountrepo.NewAccountRepo(db), clock: clk, logger: logger}
}

// ResourceChange holds optional balance deltas; nil means unchanged.
type ResourceChange struct {
	TokensDelta *int64
	PointsDelta *int64
}

// manager loads the actor and requires an admin or owner role.
func (s *Service) manager(ctx context.Context, actorID int64) (*entity.Account, error) {
	actor, err := s.accounts.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("session account no longer exists")
		}
		return nil, apperr.Internal(err)
	}
	if !actor.Role.CanManage() {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	return actor, nil
}

// target loads the account an actor wants to change and checks the actor
// may modify it.
func (s *Service) target(ctx context.Context, actor *entity.Account, targetID int64) (*entity.Account, error) {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	if !actor.Role.CanModify(target.Role) {
		return nil, apperr.Forbidden("cannot modify owner accounts")
	}
	return target, nil
}

// ChangeRole sets the target's role.
func (s *Service) ChangeRole(ctx context.Context, actorID, targetID int64, newRole string) (a *entity.Account, err error) {
	defer func() { metrics.RecordAdminAction("change_role", err) }()

	role, err := entity.ParseRole(newRole)
	if err != nil {
		return nil, apperr.Validation("invalid role")
	}
	actor, err := s.manager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanGrant(role) {
		return nil, apperr.Forbidden("only owners can promote to owner")
	}
	updated, err := s.accounts.UpdateRole(ctx, target.ID, target.Role, role, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperr.NotFound("user not found")
		case errors.Is(err, accountrepo.ErrRoleChanged):
			return nil, apperr.Conflict("target role changed, reload and retry")
		default:
			return nil, apperr.Internal(err)
		}
	}
	s.logger.Infow("role changed",
		"actor_id", actor.ID, "target_id", target.ID,
		"from", target.Role, "to", role,
	)
	return updated, nil
}

// ModifyResources applies token and point deltas to the target atomically.
func (s *Service) ModifyResources(ctx context.Context, actorID, targetID int64, ch ResourceChange) (a *entity.Account, err error) {
	defer func() { metrics.RecordAdminAction("modify_resources", err) }()

	actor, err := s.manager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}
	if ch.TokensDelta == nil && ch.PointsDelta == nil {
		return nil, apperr.InvalidAmount("no change requested")
	}
	var dt, dp int64
	if ch.TokensDelta != nil {
		dt = *ch.TokensDelta
	}
	if ch.PointsDelta != nil {
		dp = *ch.PointsDelta
	}
	if dt > MaxDelta || dt < -MaxDelta || dp > MaxDelta || dp < -MaxDelta {
		return nil, apperr.InvalidAmount("change is too large")
	}
	updated, err := s.accounts.ApplyDelta(ctx, target.ID, dt, dp, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperr.NotFound("user not found")
		case errors.Is(err, accountrepo.ErrInsufficientBalance):
			return nil, apperr.InsufficientFunds("resources cannot go below 0")
		default:
			return nil, apperr.Internal(err)
		}
	}
	s.logger.Infow("resources modified",
		"actor_id", actor.ID, "target_id", target.ID,
		"tokens_delta", dt, "points_delta", dp,
	)
	return updated, nil
}

// SearchAccounts finds accounts by case-insensitive username substring.
func (s *Service) SearchAccounts(ctx context.Context, actorID int64, substr string) ([]entity.Summary, error) {
	if _, err := s.manager(ctx, actorID); err != nil {
		return nil, err
	}
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return nil, apperr.Validation("search term is required")
	}
	out, err := s.accounts.Search(ctx, substr, SearchLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// ListAccounts returns accounts ordered by username for the admin panel.
func (s *Service) ListAccounts(ctx context.Context, actorID int64) ([]entity.Summary, error) {
	if _, err := s.manager(ctx, actorID); err != nil {
		return nil, err
	}
	out, err := s.accounts.List(ctx, ListLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
