package ledger

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/store"
)

type memQueue struct {
	jobs        []*model.RewardJob
	failEnqueue bool
}

func (q *memQueue) Enqueue(_ context.Context, job *model.RewardJob) error {
	if q.failEnqueue {
		return errors.New("queue is down")
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestLedger(queue RewardQueue) (*Ledger, *store.MemoryStore) {
	memStore := store.NewMemoryStore()
	rewards := cfg.DefaultRewards()
	return New(memStore, queue, &rewards, nopLogger{}), memStore
}

func identity(tgID int64, name string) model.Identity {
	return model.Identity{TelegramID: tgID, FirstName: name}
}

func TestGetAccountNotFound(t *testing.T) {
	l, _ := newTestLedger(nil)

	_, err := l.GetAccount(context.Background(), "tg_404")
	require.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestCreateAccountZeroed(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	created, err := l.CreateAccount(ctx, identity(100, "Alice"), "")
	require.NoError(t, err)

	loaded, err := l.GetAccount(ctx, created.UserID)
	require.NoError(t, err)

	require.Equal(t, "tg_100", loaded.UserID)
	require.Equal(t, int64(100), loaded.TelegramID)
	require.Equal(t, "Alice", loaded.TelegramName)
	require.Zero(t, loaded.Balance)
	require.Zero(t, loaded.Referrals)
	require.Zero(t, loaded.TotalEarnings)
	require.False(t, loaded.WithdrawalPending)
	require.NotZero(t, loaded.JoinDate)
	require.Equal(t, loaded.JoinDate, loaded.LastUpdated)
}

func TestCreateAccountEnqueuesReferralReward(t *testing.T) {
	queue := &memQueue{}
	l, _ := newTestLedger(queue)
	ctx := context.Background()

	_, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	created, err := l.CreateAccount(ctx, identity(2, "Friend"), "tg_1")
	require.NoError(t, err)

	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	require.Equal(t, "tg_1", job.ReferrerID)
	require.Equal(t, created.UserID, job.NewUserID)
	require.Equal(t, int64(2), job.NewTelegramID)
	require.InDelta(t, 0.01, job.Amount, 1e-9)
}

func TestCreateAccountSelfReferralSkipsQueue(t *testing.T) {
	queue := &memQueue{}
	l, _ := newTestLedger(queue)

	_, err := l.CreateAccount(context.Background(), identity(7, "Selfish"), "tg_7")
	require.NoError(t, err)
	require.Empty(t, queue.jobs)
}

func TestCreateAccountSurvivesQueueFailure(t *testing.T) {
	queue := &memQueue{failEnqueue: true}
	l, _ := newTestLedger(queue)
	ctx := context.Background()

	created, err := l.CreateAccount(ctx, identity(3, "Bob"), "tg_1")
	require.NoError(t, err)

	// The primary write wins even when the secondary action is lost.
	_, err = l.GetAccount(ctx, created.UserID)
	require.NoError(t, err)
}

func TestCreateAccountInlineRewardWithoutQueue(t *testing.T) {
	l, _ := newTestLedger(nil)
	ctx := context.Background()

	referrer, err := l.CreateAccount(ctx, identity(1, "Referrer"), "")
	require.NoError(t, err)

	_, err = l.CreateAccount(ctx, identity(2, "Friend"), referrer.UserID)
	require.NoError(t, err)

	reloaded, err := l.GetAccount(ctx, referrer.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Referrals)
	require.InDelta(t, 0.01, reloaded.Balance, 1e-9)
}
