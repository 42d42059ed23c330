package ledger

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/model"
)

// RecordReferral writes the ledger entry for (referrerID, newUserID).
// A user has at most one referrer: the reverse index under referred_by/ is
// written with a conditional set. A lost conditional write with the claim
// already held by this same referrer is a re-run of a partially completed
// job and proceeds; a claim held by a different referrer is
// ErrConcurrentUpdateLost.
func (l *Ledger) RecordReferral(ctx context.Context, referrerID, newUserID string, newTelegramID int64) error {
	if referrerID == newUserID {
		return model.ErrInvalidReferral
	}

	won, err := l.store.SetFieldNX(ctx, referredByPrefix+newUserID, "referrerId", referrerID)
	if err != nil {
		return errors.Wrap(err, "claim referral")
	}
	if !won {
		claim, found, err := l.store.Get(ctx, referredByPrefix+newUserID)
		if err != nil {
			return errors.Wrap(err, "read referral claim")
		}
		if !found || claim["referrerId"] != referrerID {
			return model.ErrConcurrentUpdateLost
		}
	}

	now, err := l.store.Now(ctx)
	if err != nil {
		return errors.Wrap(err, "server time")
	}

	entry := map[string]string{
		"userId":     newUserID,
		"telegramId": strconv.FormatInt(newTelegramID, 10),
		"referredAt": strconv.FormatInt(now.UnixMilli(), 10),
	}
	if err := l.store.Set(ctx, referralsPrefix+referrerID+"/"+newUserID, entry); err != nil {
		return errors.Wrap(err, "write referral entry")
	}

	return nil
}

// ApplyReferralReward credits the referrer. The increments are store-level
// atomic ops, so concurrent referrals for the same referrer all land.
// An absent referrer is ErrAccountNotFound; no reward is due.
func (l *Ledger) ApplyReferralReward(ctx context.Context, referrerID string, amount float64) (*model.Account, error) {
	fields, found, err := l.store.Get(ctx, usersPrefix+referrerID)
	if err != nil {
		return nil, errors.Wrap(err, "get referrer")
	}
	if !found {
		return nil, model.ErrAccountNotFound
	}

	updated, err := l.store.Incr(ctx, usersPrefix+referrerID, map[string]float64{
		"referrals":        1,
		"referralEarnings": amount,
		"balance":          amount,
		"totalEarnings":    amount,
	})
	if err != nil {
		return nil, errors.Wrap(err, "apply reward")
	}

	now, err := l.store.Now(ctx)
	if err == nil {
		_ = l.store.Update(ctx, usersPrefix+referrerID, map[string]string{
			"lastUpdated": strconv.FormatInt(now.UnixMilli(), 10),
		})
	}

	account := model.AccountFromFields(fields)
	account.Referrals = int(updated["referrals"])
	account.ReferralEarnings = updated["referralEarnings"]
	account.Balance = updated["balance"]
	account.TotalEarnings = updated["totalEarnings"]

	return account, nil
}

// ProcessReferral is RecordReferral followed by ApplyReferralReward, the
// unit of work the outbox worker executes. The reward step records its
// completion on the referral claim, so a job retried after a mid-flight
// failure pays the referrer exactly once.
func (l *Ledger) ProcessReferral(ctx context.Context, job *model.RewardJob) error {
	if err := l.RecordReferral(ctx, job.ReferrerID, job.NewUserID, job.NewTelegramID); err != nil {
		return err
	}

	claim, _, err := l.store.Get(ctx, referredByPrefix+job.NewUserID)
	if err != nil {
		return errors.Wrap(err, "read referral claim")
	}
	if claim["rewardApplied"] == "true" {
		return nil
	}

	if _, err := l.ApplyReferralReward(ctx, job.ReferrerID, job.Amount); err != nil {
		return err
	}

	if err := l.store.Update(ctx, referredByPrefix+job.NewUserID, map[string]string{
		"rewardApplied": "true",
	}); err != nil {
		return errors.Wrap(err, "mark reward applied")
	}

	return nil
}
