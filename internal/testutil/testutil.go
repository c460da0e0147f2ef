// Package testutil builds throwaway databases and services for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/database"
)

// Epoch is the start time of every mock clock handed out here.
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Secret signs test session tokens.
const Secret = "test-secret-with-enough-bytes"

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.SQLiteConfig(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	return db
}

func Logger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

// Sessions returns a session service on clk.
func Sessions(t *testing.T, clk clock.Clock) *session.Service {
	t.Helper()
	s, err := session.NewService(session.Config{Secret: []byte(Secret), Issuer: "arcade-test"}, clk)
	require.NoError(t, err)
	return s
}

// Accounts returns an account service with a cheap bcrypt cost.
func Accounts(t *testing.T, db *sqlx.DB, clk clock.Clock) *account.Service {
	t.Helper()
	return account.NewService(db, Sessions(t, clk), Logger(), account.Options{
		Hasher: account.BcryptHasher{Cost: bcrypt.MinCost},
		Clock:  clk,
	})
}

// Register creates a player and returns it.
func Register(t *testing.T, svc *account.Service, username string) *entity.Account {
	t.Helper()
	res, err := svc.Register(context.Background(), account.RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)
	return res.Account
}

// SetRole writes a role directly, bypassing the admin checks.
func SetRole(t *testing.T, db *sqlx.DB, a *entity.Account, role entity.Role) {
	t.Helper()
	_, err := accountrepo.NewAccountRepo(db).UpdateRole(context.Background(), a.ID, a.Role, role, Epoch)
	require.NoError(t, err)
	a.Role = role
}
