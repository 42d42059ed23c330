package db

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/model"
)

const (
	dbDriver = "mysql"

	outboxTable = `
id VARCHAR(36) PRIMARY KEY,
referrer_id VARCHAR(64) NOT NULL,
new_user_id VARCHAR(64) NOT NULL,
new_tg_id BIGINT NOT NULL,
amount DOUBLE NOT NULL,
attempts INT NOT NULL DEFAULT 0,
done TINYINT(1) NOT NULL DEFAULT 0,
created_at BIGINT NOT NULL`
)

func UploadDataBase(dbCfg cfg.DBConfig) *sql.DB {
	dataBase, err := sql.Open(dbDriver, dbCfg.User+":"+dbCfg.Password+"@/")
	if err != nil {
		log.Fatalf("Failed open database: %s\n", err.Error())
	}

	dataBase.Exec("CREATE DATABASE IF NOT EXISTS " + dbCfg.Name + ";")
	dataBase.Exec("USE " + dbCfg.Name + ";")
	dataBase.Exec("CREATE TABLE IF NOT EXISTS referral_outbox (" + outboxTable + ");")

	dataBase.Close()

	dataBase, err = sql.Open(dbDriver, dbCfg.User+":"+dbCfg.Password+"@/"+dbCfg.Name)
	if err != nil {
		log.Fatalf("Failed open database: %s\n", err.Error())
	}

	if err = dataBase.Ping(); err != nil {
		log.Fatalf("Failed upload database: %s\n", err.Error())
	}

	return dataBase
}

// Outbox stores queued referral rewards so the side effect of account
// creation survives restarts and store failures.
type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

func (o *Outbox) Enqueue(ctx context.Context, job *model.RewardJob) error {
	_, err := o.db.ExecContext(ctx, `
INSERT INTO referral_outbox (id, referrer_id, new_user_id, new_tg_id, amount, attempts, done, created_at)
	VALUES (?, ?, ?, ?, ?, 0, 0, ?);`,
		job.ID,
		job.ReferrerID,
		job.NewUserID,
		job.NewTelegramID,
		job.Amount,
		job.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert outbox row")
	}

	return nil
}

func (o *Outbox) ClaimBatch(ctx context.Context, limit int) ([]*model.RewardJob, error) {
	rows, err := o.db.QueryContext(ctx, `
SELECT id, referrer_id, new_user_id, new_tg_id, amount, attempts, created_at FROM referral_outbox
	WHERE done = 0
	ORDER BY created_at
	LIMIT ?;`,
		limit)
	if err != nil {
		return nil, errors.Wrap(err, "select outbox rows")
	}

	return readJobs(rows)
}

func (o *Outbox) MarkDone(ctx context.Context, id string) error {
	_, err := o.db.ExecContext(ctx, `
UPDATE referral_outbox SET done = 1 WHERE id = ?;`, id)
	if err != nil {
		return errors.Wrap(err, "mark done")
	}

	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string) error {
	_, err := o.db.ExecContext(ctx, `
UPDATE referral_outbox SET attempts = attempts + 1 WHERE id = ?;`, id)
	if err != nil {
		return errors.Wrap(err, "mark failed")
	}

	return nil
}

func (o *Outbox) CountPending(ctx context.Context) (int, error) {
	rows, err := o.db.QueryContext(ctx, `
SELECT COUNT(*) FROM referral_outbox WHERE done = 0;`)
	if err != nil {
		return 0, errors.Wrap(err, "count pending")
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, errors.Wrap(err, "failed to scan row")
		}
	}

	return count, rows.Err()
}

func readJobs(rows *sql.Rows) ([]*model.RewardJob, error) {
	defer rows.Close()

	var jobs []*model.RewardJob

	for rows.Next() {
		job := &model.RewardJob{}

		if err := rows.Scan(&job.ID,
			&job.ReferrerID,
			&job.NewUserID,
			&job.NewTelegramID,
			&job.Amount,
			&job.Attempts,
			&job.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}

		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
