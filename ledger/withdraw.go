package ledger

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/model"
)

// RequestWithdrawal marks the account pending and writes the withdrawal
// request record. The pending transition is a conditional write on a lock
// record, so two /withdraw commands racing each other produce exactly one
// request; the loser gets ErrConcurrentUpdateLost.
//
// The lock field is scoped to the account's withdrawal generation: paying
// out a request bumps totalWithdrawals, which retires the consumed field
// and re-arms the conditional write for the next request.
//
// Callers gate on CheckEligibility first; resolution of the request is
// external to the bot.
func (l *Ledger) RequestWithdrawal(ctx context.Context, account *model.Account) (*model.WithdrawalRequest, error) {
	id := uuid.NewString()

	won, err := l.store.SetFieldNX(ctx, lockPrefix+account.UserID, lockField(account), id)
	if err != nil {
		return nil, errors.Wrap(err, "claim withdrawal")
	}
	if !won {
		return nil, model.ErrConcurrentUpdateLost
	}

	now, err := l.store.Now(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "server time")
	}

	request := &model.WithdrawalRequest{
		ID:          id,
		UserID:      account.UserID,
		Amount:      account.Balance,
		RequestedAt: now.UnixMilli(),
		Status:      "pending",
	}

	if err := l.store.Set(ctx, withdrawalsPrefix+id, map[string]string{
		"id":          request.ID,
		"userId":      request.UserID,
		"amount":      strconv.FormatFloat(request.Amount, 'f', -1, 64),
		"requestedAt": strconv.FormatInt(request.RequestedAt, 10),
		"status":      request.Status,
	}); err != nil {
		return nil, errors.Wrap(err, "write withdrawal request")
	}

	if err := l.store.Update(ctx, usersPrefix+account.UserID, map[string]string{
		"withdrawalPending": "true",
		"lastUpdated":       strconv.FormatInt(request.RequestedAt, 10),
	}); err != nil {
		return nil, errors.Wrap(err, "mark pending")
	}

	account.WithdrawalPending = true
	return request, nil
}

func lockField(account *model.Account) string {
	return "requestId:" + strconv.FormatFloat(account.TotalWithdrawals, 'f', -1, 64)
}
