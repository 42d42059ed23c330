package ledger

import (
	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/model"
)

// CheckEligibility applies the withdrawal gates in order: unresolved
// request, then the first-withdrawal referral gate, then the balance
// minimum. Pure over its inputs.
//
// SubsequentWithdrawalMinReferrals is intentionally not checked here: the
// bot has always gated repeat withdrawals on balance alone, even though the
// help text advertises the referral requirement.
func CheckEligibility(account *model.Account, rewards cfg.Rewards) model.EligibilityResult {
	if account.WithdrawalPending {
		return model.EligibilityResult{State: model.WithdrawalPendingState}
	}

	if account.TotalWithdrawals == 0 && account.Referrals < rewards.FirstWithdrawalMinReferrals {
		return model.EligibilityResult{
			State:            model.NeedsReferrals,
			MissingReferrals: rewards.FirstWithdrawalMinReferrals - account.Referrals,
		}
	}

	if account.Balance < rewards.MinWithdrawalBalance {
		return model.EligibilityResult{
			State:          model.NeedsBalance,
			MissingBalance: rewards.MinWithdrawalBalance - account.Balance,
		}
	}

	return model.EligibilityResult{State: model.Eligible}
}
