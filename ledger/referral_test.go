package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/store"
)

func TestRecordReferralSelfReferral(t *testing.T) {
	l, memStore := newTestLedger(nil)

	err := l.RecordReferral(context.Background(), "tg_1", "tg_1", 1)
	require.ErrorIs(t, err, model.ErrInvalidReferral)

	entries, err := memStore.Children(context.Background(), "referrals/")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecordReferralFirstReferrerWins(t *testing.T) {
	l, memStore := newTestLedger(nil)
	ctx := context.Background()

	require.NoError(t, l.RecordReferral(ctx, "tg_1", "tg_9", 9))

	err := l.RecordReferral(ctx, "tg_2", "tg_9", 9)
	require.ErrorIs(t, err, model.ErrConcurrentUpdateLost)

	entries, err := memStore.Children(ctx, "referrals/")
	require.NoError(t, err)
	require.Equal(t, []string{"referrals/tg_1/tg_9"}, entries)
}

func TestApplyReferralRewardMissingReferrer(t *testing.T) {
	l, _ := newTestLedger(nil)

	_, err := l.ApplyReferralReward(context.Background(), "tg_404", 0.01)
	require.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestApplyReferralRewardSequential(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	const n = 20
	for i := 0; i < n; i++ {
		_, err := l.ApplyReferralReward(ctx, referrer.UserID, 0.01)
		require.NoError(t, err)
	}

	reloaded, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)

	require.Equal(t, n, reloaded.Referrals)
	require.InDelta(t, n*0.01, reloaded.Balance, 1e-9)
	require.InDelta(t, n*0.01, reloaded.ReferralEarnings, 1e-9)
	require.InDelta(t, n*0.01, reloaded.TotalEarnings, 1e-9)
	require.LessOrEqual(t, reloaded.Balance, reloaded.TotalEarnings+1e-9)
}

// The store-level increments are the fix for the lost-update race the old
// read-modify-write had: under concurrency every reward must land.
func TestApplyReferralRewardConcurrent(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := l.ApplyReferralReward(ctx, referrer.UserID, 0.01)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)

	require.Equal(t, n, reloaded.Referrals)
	require.InDelta(t, n*0.01, reloaded.Balance, 1e-6)
}

func TestProcessReferralAppliesRewardOnce(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	job := &model.RewardJob{
		ID:            "job-1",
		ReferrerID:    referrer.UserID,
		NewUserID:     "tg_2",
		NewTelegramID: 2,
		Amount:        0.01,
	}

	require.NoError(t, l.ProcessReferral(ctx, job))

	// Re-running the same pair is a no-op, not a second payment.
	require.NoError(t, l.ProcessReferral(ctx, job))

	reloaded, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Referrals)
	require.InDelta(t, 0.01, reloaded.Balance, 1e-9)
}

// failOnceStore fails the first write to one path, the shape of a transient
// store outage in the middle of a multi-step mutation.
type failOnceStore struct {
	store.Store

	failPath string
	failed   bool
}

func (s *failOnceStore) Set(ctx context.Context, path string, fields map[string]string) error {
	if !s.failed && path == s.failPath {
		s.failed = true
		return errors.New("connection reset")
	}
	return s.Store.Set(ctx, path, fields)
}

func TestProcessReferralRetryAfterPartialFailurePaysOnce(t *testing.T) {
	flaky := &failOnceStore{
		Store:    store.NewMemoryStore(),
		failPath: "referrals/tg_1/tg_2",
	}
	rewards := cfg.DefaultRewards()
	l := New(flaky, nil, &rewards, nopLogger{})
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	job := &model.RewardJob{
		ID:            "job-1",
		ReferrerID:    referrer.UserID,
		NewUserID:     "tg_2",
		NewTelegramID: 2,
		Amount:        0.01,
	}

	// First attempt wins the claim, then dies writing the ledger entry.
	require.Error(t, l.ProcessReferral(ctx, job))

	reloaded, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Zero(t, reloaded.Referrals)

	// The retry of the identical job completes the entry and pays.
	require.NoError(t, l.ProcessReferral(ctx, job))

	reloaded, err = l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Referrals)
	require.InDelta(t, 0.01, reloaded.Balance, 1e-9)

	// Further retries stay paid exactly once.
	require.NoError(t, l.ProcessReferral(ctx, job))

	reloaded, err = l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Referrals)
	require.InDelta(t, 0.01, reloaded.Balance, 1e-9)
}

func TestBalanceNeverExceedsTotalEarnings(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	account, err := l.CreateAccount(ctx, identity(1, "Invariant"), "")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		updated, err := l.ApplyReferralReward(ctx, account.UserID, 0.01)
		require.NoError(t, err)
		require.LessOrEqual(t, updated.Balance, updated.TotalEarnings+1e-9)
	}
}
