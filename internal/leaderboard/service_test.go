package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ledger"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/clock"
)

func TestTopAndRank(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	clk := clock.NewMock(testutil.Epoch)
	accounts := testutil.Accounts(t, db, clk)
	games := ledger.NewService(db, clk, testutil.Logger())
	board := NewService(db, testutil.Logger())

	register := func(name string) *entity.Account {
		clk.Advance(time.Minute)
		return testutil.Register(t, accounts, name)
	}
	play := func(a *entity.Account, won bool, points int64) {
		_, err := games.RecordOutcome(ctx, a.ID, ledger.OutcomeInput{Kind: "numberGuess", Won: won, PointsEarned: points})
		require.NoError(t, err)
	}

	alice := register("alice")
	bob := register("bob")
	carol := register("carol")
	dave := register("dave")

	play(alice, true, 50)
	play(alice, false, 0)
	play(bob, true, 100)
	play(carol, true, 50)
	play(carol, false, 0)
	play(carol, false, 0)

	top, err := board.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 4)

	// bob leads; alice and carol tie on points and alice registered first
	assert.Equal(t, []int64{bob.ID, alice.ID, carol.ID, dave.ID},
		[]int64{top[0].ID, top[1].ID, top[2].ID, top[3].ID})
	assert.Equal(t, int64(1), top[2].Wins)
	assert.Equal(t, int64(3), top[2].TotalGames)
	assert.Equal(t, int64(0), top[3].TotalGames)
	assert.Equal(t, int64(0), top[3].Wins)

	for i, e := range top {
		st, err := board.RankOf(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), st.Rank)
		assert.Equal(t, e.Points, st.Points)
		assert.Equal(t, e.Wins, st.Wins)
		assert.Equal(t, e.TotalGames, st.TotalGames)
	}

	top, err = board.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestRankOfMissing(t *testing.T) {
	board := NewService(testutil.NewDB(t), testutil.Logger())

	_, err := board.RankOf(context.Background(), 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTopClampsLimit(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	accounts := testutil.Accounts(t, db, clock.NewMock(testutil.Epoch))
	for _, name := range []string{"a1", "a2", "a3"} {
		testutil.Register(t, accounts, name)
	}
	board := NewService(db, testutil.Logger())

	top, err := board.Top(ctx, 10_000)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	// same created_at: id decides
	assert.Less(t, top[0].ID, top[1].ID)
	assert.Less(t, top[1].ID, top[2].ID)
}
