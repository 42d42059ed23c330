package db

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/log"
	"github.com/bots-empire/adnet-bot/model"
)

const (
	defaultBatchSize   = 50
	defaultMaxAttempts = 5
)

// RewardQueue is the slice of Outbox the worker needs; tests substitute an
// in-memory queue.
type RewardQueue interface {
	ClaimBatch(ctx context.Context, limit int) ([]*model.RewardJob, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// RewardWorker drains the referral outbox, applying queued rewards with
// bounded retries.
type RewardWorker struct {
	queue   RewardQueue
	ledger  *ledger.Ledger
	logger  log.Logger
	botLink string

	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewRewardWorker(queue RewardQueue, l *ledger.Ledger, logger log.Logger, botLink string, interval time.Duration) *RewardWorker {
	return &RewardWorker{
		queue:       queue,
		ledger:      l,
		logger:      logger,
		botLink:     botLink,
		interval:    interval,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
	}
}

func (w *RewardWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				w.logger.Warn("reward worker: %s", err.Error())
			}
		}
	}
}

// ProcessBatch claims one batch and resolves every job in it. A job that
// cannot legitimately pay out (self-referral, already-attributed user,
// missing referrer) is terminal; transient failures are retried until the
// attempt budget runs out.
func (w *RewardWorker) ProcessBatch(ctx context.Context) error {
	jobs, err := w.queue.ClaimBatch(ctx, w.batchSize)
	if err != nil {
		return errors.Wrap(err, "claim batch")
	}

	for _, job := range jobs {
		w.resolve(ctx, job)
	}

	return nil
}

func (w *RewardWorker) resolve(ctx context.Context, job *model.RewardJob) {
	err := w.ledger.ProcessReferral(ctx, job)

	switch {
	case err == nil:
		model.ReferralRewardApplied.WithLabelValues(w.botLink).Inc()

	case errors.Is(err, model.ErrInvalidReferral),
		errors.Is(err, model.ErrConcurrentUpdateLost),
		errors.Is(err, model.ErrAccountNotFound):
		// No reward is due; dropping the job is the correct outcome.

	default:
		if job.Attempts+1 >= w.maxAttempts {
			model.ReferralRewardFailed.WithLabelValues(w.botLink).Inc()
			w.logger.Warn("referral reward %s dropped after %d attempts: %s",
				job.ID, job.Attempts+1, err.Error())
			break
		}

		if err := w.queue.MarkFailed(ctx, job.ID); err != nil {
			w.logger.Warn("mark failed %s: %s", job.ID, err.Error())
		}
		return
	}

	if err := w.queue.MarkDone(ctx, job.ID); err != nil {
		w.logger.Warn("mark done %s: %s", job.ID, err.Error())
	}
}
