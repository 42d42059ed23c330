package db

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/store"
)

type memRewardQueue struct {
	jobs   []*model.RewardJob
	done   []string
	failed []string
}

func (q *memRewardQueue) ClaimBatch(_ context.Context, limit int) ([]*model.RewardJob, error) {
	if len(q.jobs) > limit {
		return q.jobs[:limit], nil
	}
	return q.jobs, nil
}

func (q *memRewardQueue) MarkDone(_ context.Context, id string) error {
	q.done = append(q.done, id)
	return nil
}

func (q *memRewardQueue) MarkFailed(_ context.Context, id string) error {
	q.failed = append(q.failed, id)
	return nil
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Fatal(string, ...interface{}) {}

// flakyStore fails every conditional write, which makes the reward look
// like a transient store outage to the worker.
type flakyStore struct {
	store.Store
}

func (flakyStore) SetFieldNX(context.Context, string, string, string) (bool, error) {
	return false, errors.New("connection reset")
}

func newWorker(t *testing.T, s store.Store, queue RewardQueue) (*RewardWorker, *ledger.Ledger) {
	t.Helper()
	rewards := cfg.DefaultRewards()
	l := ledger.New(s, nil, &rewards, testLogger{})
	return NewRewardWorker(queue, l, testLogger{}, "t.me/test_bot", time.Minute), l
}

func seedReferrer(t *testing.T, l *ledger.Ledger) *model.Account {
	t.Helper()
	account, err := l.CreateAccount(context.Background(), model.Identity{TelegramID: 100, FirstName: "Ref"}, "")
	require.NoError(t, err)
	return account
}

func job(referrerID string, tgID int64) *model.RewardJob {
	return &model.RewardJob{
		ID:            "job-1",
		ReferrerID:    referrerID,
		NewUserID:     model.AccountID(tgID),
		NewTelegramID: tgID,
		Amount:        0.01,
	}
}

func TestProcessBatchAppliesReward(t *testing.T) {
	memStore := store.NewMemoryStore()
	queue := &memRewardQueue{}
	worker, l := newWorker(t, memStore, queue)
	ctx := context.Background()

	referrer := seedReferrer(t, l)
	_, err := l.CreateAccount(ctx, model.Identity{TelegramID: 200, FirstName: "New"}, "")
	require.NoError(t, err)
	queue.jobs = []*model.RewardJob{job(referrer.UserID, 200)}

	require.NoError(t, worker.ProcessBatch(ctx))
	require.Equal(t, []string{"job-1"}, queue.done)
	require.Empty(t, queue.failed)

	paid, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, paid.Referrals)
	require.InDelta(t, 0.01, paid.Balance, 1e-9)
}

func TestProcessBatchTerminalJobs(t *testing.T) {
	tests := []struct {
		name string
		job  func(l *ledger.Ledger) *model.RewardJob
	}{
		{
			name: "self referral",
			job: func(l *ledger.Ledger) *model.RewardJob {
				account := seedReferrer(t, l)
				return job(account.UserID, account.TelegramID)
			},
		},
		{
			name: "missing referrer",
			job: func(*ledger.Ledger) *model.RewardJob {
				return job("tg_404", 200)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &memRewardQueue{}
			worker, l := newWorker(t, store.NewMemoryStore(), queue)

			queue.jobs = []*model.RewardJob{tt.job(l)}

			require.NoError(t, worker.ProcessBatch(context.Background()))
			require.Equal(t, []string{"job-1"}, queue.done)
			require.Empty(t, queue.failed)
		})
	}
}

func TestProcessBatchDuplicateAttributionIsTerminal(t *testing.T) {
	memStore := store.NewMemoryStore()
	queue := &memRewardQueue{}
	worker, l := newWorker(t, memStore, queue)
	ctx := context.Background()

	first := seedReferrer(t, l)
	second, err := l.CreateAccount(ctx, model.Identity{TelegramID: 101, FirstName: "Other"}, "")
	require.NoError(t, err)
	_, err = l.CreateAccount(ctx, model.Identity{TelegramID: 200, FirstName: "New"}, first.UserID)
	require.NoError(t, err)

	rival := job(second.UserID, 200)
	queue.jobs = []*model.RewardJob{rival}

	require.NoError(t, worker.ProcessBatch(ctx))
	require.Equal(t, []string{"job-1"}, queue.done)
	require.Empty(t, queue.failed)

	loser, err := l.GetAccount(ctx, second.UserID)
	require.NoError(t, err)
	require.Zero(t, loser.Referrals)
}

func TestProcessBatchTransientFailureRetries(t *testing.T) {
	queue := &memRewardQueue{}
	worker, l := newWorker(t, flakyStore{store.NewMemoryStore()}, queue)
	ctx := context.Background()

	referrer := seedReferrer(t, l)
	queue.jobs = []*model.RewardJob{job(referrer.UserID, 200)}

	require.NoError(t, worker.ProcessBatch(ctx))
	require.Empty(t, queue.done)
	require.Equal(t, []string{"job-1"}, queue.failed)
}

func TestProcessBatchDropsJobAfterAttemptBudget(t *testing.T) {
	queue := &memRewardQueue{}
	worker, l := newWorker(t, flakyStore{store.NewMemoryStore()}, queue)
	ctx := context.Background()

	referrer := seedReferrer(t, l)
	exhausted := job(referrer.UserID, 200)
	exhausted.Attempts = defaultMaxAttempts - 1
	queue.jobs = []*model.RewardJob{exhausted}

	require.NoError(t, worker.ProcessBatch(ctx))
	require.Equal(t, []string{"job-1"}, queue.done)
	require.Empty(t, queue.failed)
}
