package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(2, "One"), "")
	require.NoError(t, err)
	_, err = l.CreateAccount(ctx, identity(3, "Two"), referrer.UserID)
	require.NoError(t, err)

	account := eligibleAccount(t, l)
	_, err = l.RequestWithdrawal(ctx, account)
	require.NoError(t, err)

	stats, err := l.Stats(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, stats.Users)
	require.Equal(t, 1, stats.Referrals)
	require.Equal(t, 1, stats.Withdrawals)
}

func TestResetDailyCounters(t *testing.T) {
	l, memStore := newTestLedger(nil)
	ctx := context.Background()

	account, err := l.CreateAccount(ctx, identity(1, "Watcher"), "")
	require.NoError(t, err)

	account.AdsWatched = 42
	account.DailyAdsWatched = 10
	require.NoError(t, memStore.Set(ctx, usersPrefix+account.UserID, account.ToFields()))

	count, err := l.ResetDailyCounters(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	reloaded, err := l.GetAccount(ctx, account.UserID)
	require.NoError(t, err)
	require.Zero(t, reloaded.DailyAdsWatched)
	require.Equal(t, 42, reloaded.AdsWatched)
}
