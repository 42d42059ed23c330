package ledger

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/model"
)

func (l *Ledger) Stats(ctx context.Context) (*model.Stats, error) {
	users, err := l.store.Children(ctx, usersPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "count users")
	}

	referrals, err := l.store.Children(ctx, referralsPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "count referrals")
	}

	withdrawals, err := l.store.Children(ctx, withdrawalsPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "count withdrawals")
	}

	return &model.Stats{
		Users:       len(users),
		Referrals:   len(referrals),
		Withdrawals: len(withdrawals),
	}, nil
}

// ResetDailyCounters zeroes dailyAdsWatched on every account. Runs from the
// daily job, not from any user command.
func (l *Ledger) ResetDailyCounters(ctx context.Context) (int, error) {
	paths, err := l.store.Children(ctx, usersPrefix)
	if err != nil {
		return 0, errors.Wrap(err, "list accounts")
	}

	now, err := l.store.Now(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "server time")
	}
	ts := strconv.FormatInt(now.UnixMilli(), 10)

	var reset int
	for _, path := range paths {
		if err := l.store.Update(ctx, path, map[string]string{
			"dailyAdsWatched": "0",
			"lastUpdated":     ts,
		}); err != nil {
			return reset, errors.Wrap(err, "reset "+path)
		}
		reset++
	}

	return reset, nil
}
