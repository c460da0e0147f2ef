package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
)

// DefaultStartingTokens is the token allotment of a new account.
const DefaultStartingTokens = 1000

const maxDisplayName = 64

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// Options tunes the service; zero values fall back to defaults.
type Options struct {
	StartingTokens int64
	Hasher         PasswordHasher
	Clock          clock.Clock
}

// Service handles registration, authentication and self-service profile
// changes.
type Service struct {
	repo           *accountrepo.AccountRepo
	sessions       *session.Service
	hasher         PasswordHasher
	clock          clock.Clock
	logger         *zap.SugaredLogger
	startingTokens int64
	validate       *validator.Validate
}

func NewService(db *sqlx.DB, sessions *session.Service, logger *zap.SugaredLogger, opts Options) *Service {
	if opts.Hasher == nil {
		opts.Hasher = BcryptHasher{Cost: 10}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.StartingTokens <= 0 {
		opts.StartingTokens = DefaultStartingTokens
	}
	return &Service{
		repo:           accountrepo.NewAccountRepo(db),
		sessions:       sessions,
		hasher:         opts.Hasher,
		clock:          opts.Clock,
		logger:         logger,
		startingTokens: opts.StartingTokens,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterInput is the data needed to open an account. DisplayName defaults
// to Username.
type RegisterInput struct {
	Username    string `validate:"required,max=32"`
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,max=72"`
	DisplayName string `validate:"max=64"`
}

// AuthResult is an account together with a freshly issued session token.
type AuthResult struct {
	Account   *entity.Account
	Token     string
	ExpiresAt time.Time
}

// Register creates a player account with the starting balances and signs a
// session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation("username, a valid email and password are required")
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := s.clock.Now()
	a := &entity.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		Tokens:       s.startingTokens,
		Points:       0,
		Role:         entity.RolePlayer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, accountrepo.ErrDuplicate) {
			return nil, apperr.Conflict("username or email already exists")
		}
		return nil, apperr.Internal(err)
	}
	s.logger.Infow("account registered", "account_id", a.ID, "username", a.Username)
	return s.issue(a)
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords are indistinguishable; banned accounts are refused only after
// the password checks out.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("missing username or password")
	}
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Internal(err)
	}
	if !s.hasher.Verify(a.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !a.Role.CanAuthenticate() {
		return nil, apperr.Forbidden("your account has been banned")
	}
	return s.issue(a)
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// UpdateDisplayName changes the caller's display name.
func (s *Service) UpdateDisplayName(ctx context.Context, id int64, name string) (*entity.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("display name is required")
	}
	if len([]rune(name)) > maxDisplayName {
		return nil, apperr.Validation("display name is too long")
	}
	a, err := s.repo.UpdateDisplayName(ctx, id, name, s.clock.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// EnsureOwner promotes username to owner if the account exists.
func (s *Service) EnsureOwner(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	changed, err := s.repo.PromoteOwner(ctx, username, s.clock.Now())
	if err != nil {
		return apperr.Internal(err)
	}
	if changed {
		s.logger.Infow("owner role granted at startup", "username", username)
	}
	return nil
}

func (s *Service) issue(a *entity.Account) (*AuthResult, error) {
	token, exp, err := s.sessions.Issue(a.ID, a.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Account: a, Token: token, ExpiresAt: exp}, nil
}
