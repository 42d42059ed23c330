package model

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TotalIncome = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_total_income",
		Help: "New registered users",
	}, []string{"bot_link"})

	HandleUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_handle_updates",
		Help: "Handled updates from telegram",
	}, []string{"bot_link"})

	IncomeBySource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_income_by_source",
		Help: "New users by referral source",
	}, []string{"bot_link", "source"})

	ReferralRewardApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_referral_reward_applied",
		Help: "Referral rewards applied to referrers",
	}, []string{"bot_link"})

	ReferralRewardFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_referral_reward_failed",
		Help: "Referral rewards that exhausted their outbox attempts",
	}, []string{"bot_link"})

	WithdrawalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adnet_withdrawal_requests",
		Help: "Accepted withdrawal requests",
	}, []string{"bot_link"})
)
