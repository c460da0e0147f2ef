package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
)

type fixture struct {
	db       *sqlx.DB
	clock    *clock.Mock
	accounts *account.Service
	ledger   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.NewMock(testutil.Epoch)
	return &fixture{
		db:       db,
		clock:    clk,
		accounts: testutil.Accounts(t, db, clk),
		ledger:   NewService(db, clk, testutil.Logger()),
	}
}

func (f *fixture) balance(t *testing.T, id int64) *entity.Account {
	t.Helper()
	a, err := f.accounts.Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T { return &v }

func TestScenarioWagerAndReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := testutil.Register(t, f.accounts, "alice")
	assert.Equal(t, int64(1000), alice.Tokens)

	started, err := f.ledger.StartGame(ctx, alice.ID, "coinFlip")
	require.NoError(t, err)
	assert.Equal(t, int64(10), started.Wager)
	assert.Equal(t, int64(990), started.Account.Tokens)

	a, err := f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "coinFlip", Won: true, PointsEarned: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(50), a.Points)
	assert.Equal(t, int64(990), a.Tokens)

	hist, err := f.ledger.History(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Won)
	assert.Equal(t, int64(50), hist[0].PointsEarned)
}

func TestStartGameUnknownKind(t *testing.T) {
	f := newFixture(t)
	alice := testutil.Register(t, f.accounts, "alice")

	_, err := f.ledger.StartGame(context.Background(), alice.ID, "poker")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, int64(1000), f.balance(t, alice.ID).Tokens)
}

func TestStartGameInsufficientTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")
	_, err := f.ledger.accounts.ApplyDelta(ctx, alice.ID, -995, 0, testutil.Epoch)
	require.NoError(t, err)

	_, err = f.ledger.StartGame(ctx, alice.ID, "matchCards")
	assert.True(t, apperr.Is(err, apperr.KindInsufficientFunds))
	assert.Equal(t, int64(5), f.balance(t, alice.ID).Tokens)

	// exactly the wager is enough
	_, err = f.ledger.StartGame(ctx, alice.ID, "coinFlip")
	assert.True(t, apperr.Is(err, apperr.KindInsufficientFunds))
	_, err = f.ledger.accounts.ApplyDelta(ctx, alice.ID, 5, 0, testutil.Epoch)
	require.NoError(t, err)
	res, err := f.ledger.StartGame(ctx, alice.ID, "coinFlip")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Account.Tokens)
}

func TestStartGameMissingAccount(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.StartGame(context.Background(), 404, "coinFlip")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRecordOutcomeLostCreditsZero(t *testing.T) {
	f := newFixture(t)
	alice := testutil.Register(t, f.accounts, "alice")

	a, err := f.ledger.RecordOutcome(context.Background(), alice.ID, OutcomeInput{Kind: "numberGuess", Won: false, PointsEarned: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Points)

	hist, err := f.ledger.History(context.Background(), alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.False(t, hist[0].Won)
	assert.Equal(t, int64(0), hist[0].PointsEarned)
}

func TestRecordOutcomeCapsReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")

	a, err := f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "coinFlip", Won: true, PointsEarned: 1_000_000})
	require.NoError(t, err)
	assert.Equal(t, int64(50), a.Points)

	a, err = f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "matchCards", Won: true, PointsEarned: 150, ElapsedSeconds: ptr(60.0)})
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.Points)

	// a smaller claim is credited as is
	a, err = f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "reaction", Won: true, PointsEarned: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(110), a.Points)
}

func TestRecordOutcomeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")

	_, err := f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "chess", Won: true, PointsEarned: 1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "coinFlip", Won: true, PointsEarned: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "matchCards", Won: true, PointsEarned: 1, ElapsedSeconds: ptr(-3.0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	hist, err := f.ledger.History(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestRecordOutcomeMissingAccountLeavesNoResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordOutcome(ctx, 404, OutcomeInput{Kind: "coinFlip", Won: true, PointsEarned: 50})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var n int
	require.NoError(t, f.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM game_results`))
	assert.Zero(t, n)
}

func TestRecordOutcomeConcurrentIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")

	const calls = 40
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(won bool) {
			defer wg.Done()
			_, err := f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "coinFlip", Won: won, PointsEarned: 50})
			errs <- err
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var total, wins int64
	require.NoError(t, f.db.GetContext(ctx, &total, f.db.Rebind(`SELECT COUNT(*) FROM game_results WHERE account_id = ?`), alice.ID))
	require.NoError(t, f.db.GetContext(ctx, &wins, f.db.Rebind(`SELECT COUNT(*) FROM game_results WHERE account_id = ? AND won = TRUE`), alice.ID))
	assert.Equal(t, int64(calls), total)
	assert.Equal(t, int64(calls/2), wins)
	assert.Equal(t, int64(calls/2*50), f.balance(t, alice.ID).Points)
}

func TestExchangeTokensForPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")
	_, err := f.ledger.accounts.ApplyDelta(ctx, alice.ID, 0, 100, testutil.Epoch)
	require.NoError(t, err)

	a, err := f.ledger.ExchangeTokensForPoints(ctx, alice.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1007), a.Tokens)
	assert.Equal(t, int64(30), a.Points)

	// 4 tokens cost 40 points; only 30 left
	_, err = f.ledger.ExchangeTokensForPoints(ctx, alice.ID, 4)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientFunds))
	after := f.balance(t, alice.ID)
	assert.Equal(t, int64(1007), after.Tokens)
	assert.Equal(t, int64(30), after.Points)

	a, err = f.ledger.ExchangeTokensForPoints(ctx, alice.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1010), a.Tokens)
	assert.Equal(t, int64(0), a.Points)
}

func TestExchangeTokensInvalidAmount(t *testing.T) {
	f := newFixture(t)
	alice := testutil.Register(t, f.accounts, "alice")

	for _, n := range []int64{0, -5, MaxExchangeTokens + 1} {
		_, err := f.ledger.ExchangeTokensForPoints(context.Background(), alice.ID, n)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, "n=%d", n)
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Equal(t, "INVALID_AMOUNT", ae.Code)
	}
}

func TestHistoryNewestFirstAndLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.Register(t, f.accounts, "alice")

	for i := 0; i < DefaultHistoryLimit+5; i++ {
		f.clock.Advance(time.Second)
		_, err := f.ledger.RecordOutcome(ctx, alice.ID, OutcomeInput{Kind: "coinFlip", Won: i%3 == 0, PointsEarned: 50})
		require.NoError(t, err)
	}

	hist, err := f.ledger.History(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, hist, DefaultHistoryLimit)
	for i := 1; i < len(hist); i++ {
		assert.Greater(t, hist[i-1].ID, hist[i].ID)
	}

	hist, err = f.ledger.History(ctx, alice.ID, 3)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
}
