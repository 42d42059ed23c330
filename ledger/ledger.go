// Package ledger is the reward accounting core: account records, referral
// attribution and the withdrawal eligibility gate. All durable state lives
// behind store.Store; the ledger itself is stateless between calls.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/log"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/store"
)

const (
	usersPrefix       = "users/"
	referralsPrefix   = "referrals/"
	referredByPrefix  = "referred_by/"
	withdrawalsPrefix = "withdrawals/"
	lockPrefix        = "withdrawal_locks/"
)

// RewardQueue hands the referral reward side effect to the outbox worker,
// so a store hiccup after account creation is retried instead of dropped.
type RewardQueue interface {
	Enqueue(ctx context.Context, job *model.RewardJob) error
}

type Ledger struct {
	store   store.Store
	queue   RewardQueue
	rewards *cfg.Rewards
	logger  log.Logger
}

// New wires the ledger. queue may be nil, in which case the referral reward
// is applied inline on a best-effort basis.
func New(s store.Store, queue RewardQueue, rewards *cfg.Rewards, logger log.Logger) *Ledger {
	return &Ledger{
		store:   s,
		queue:   queue,
		rewards: rewards,
		logger:  logger,
	}
}

func (l *Ledger) Rewards() cfg.Rewards {
	return *l.rewards
}

// GetAccount loads the record for userID. Absence is ErrAccountNotFound,
// not a transport failure.
func (l *Ledger) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	fields, found, err := l.store.Get(ctx, usersPrefix+userID)
	if err != nil {
		return nil, errors.Wrap(err, "get account")
	}
	if !found {
		return nil, model.ErrAccountNotFound
	}

	return model.AccountFromFields(fields), nil
}

// CreateAccount persists a zeroed record for the identity. The referral
// reward for referrerID is a secondary action: the account write must
// succeed, the reward is queued (or applied inline) afterwards and its
// failure never fails the registration.
func (l *Ledger) CreateAccount(ctx context.Context, identity model.Identity, referrerID string) (*model.Account, error) {
	now, err := l.store.Now(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "server time")
	}

	account := model.NewAccount(identity, now)

	if err := l.store.Set(ctx, usersPrefix+account.UserID, account.ToFields()); err != nil {
		return nil, errors.Wrap(err, "create account")
	}

	if referrerID == "" || referrerID == account.UserID {
		return account, nil
	}

	job := &model.RewardJob{
		ID:            uuid.NewString(),
		ReferrerID:    referrerID,
		NewUserID:     account.UserID,
		NewTelegramID: account.TelegramID,
		Amount:        l.rewards.ReferralAmount,
		CreatedAt:     now.UnixMilli(),
	}

	if l.queue == nil {
		if err := l.ProcessReferral(ctx, job); err != nil {
			l.logger.Warn("referral reward for %s not applied: %s", referrerID, err.Error())
		}
		return account, nil
	}

	if err := l.queue.Enqueue(ctx, job); err != nil {
		l.logger.Warn("enqueue referral reward for %s: %s", referrerID, err.Error())
	}

	return account, nil
}
