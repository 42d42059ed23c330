package administrator

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/assets"
	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/db"
	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/msgs"
)

const (
	referralAmountParam = "referral_amount"
	minBalanceParam     = "min_withdrawal_balance"
	firstReferralsParam = "first_withdrawal_min_referrals"
)

var errNotAdminInput = errors.New("not admin input")

type Admin struct {
	bot     *model.GlobalBot
	ledger  *ledger.Ledger
	outbox  *db.Outbox
	rewards *cfg.Rewards

	msgs *msgs.Service
}

func NewAdminService(bot *model.GlobalBot, l *ledger.Ledger, outbox *db.Outbox, rewards *cfg.Rewards, msgsSrv *msgs.Service) *Admin {
	return &Admin{
		bot:     bot,
		ledger:  l,
		outbox:  outbox,
		rewards: rewards,
		msgs:    msgsSrv,
	}
}

func (a *Admin) isAdmin(user *model.Account) bool {
	return a.bot.AdminChatID != 0 && user.TelegramID == a.bot.AdminChatID
}

// StatsCommand answers /stats with store-wide totals. Everyone else gets
// the admin-only refusal.
func (a *Admin) StatsCommand(s *model.Situation) error {
	if !a.isAdmin(s.User) {
		return a.msgs.NewParseMessage(s.User.TelegramID, assets.AdminText("admin_only_text"))
	}

	return a.sendStats(s, false)
}

func (a *Admin) sendStats(s *model.Situation, edit bool) error {
	ctx := context.Background()

	stats, err := a.ledger.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "collect stats")
	}

	queued := 0
	if a.outbox != nil {
		queued, err = a.outbox.CountPending(ctx)
		if err != nil {
			return errors.Wrap(err, "count queued rewards")
		}
	}

	text := assets.AdminText("stats_text",
		stats.Users,
		stats.Referrals,
		stats.Withdrawals,
		queued,
		a.bot.BotUsername)

	markUp := msgs.NewIlMarkUp(
		msgs.NewIlRow(msgs.NewIlAdminButton("change_referral_amount_button", "admin/change?"+referralAmountParam)),
		msgs.NewIlRow(msgs.NewIlAdminButton("change_min_balance_button", "admin/change?"+minBalanceParam)),
		msgs.NewIlRow(msgs.NewIlAdminButton("change_first_referrals_button", "admin/change?"+firstReferralsParam)),
	).Build()

	db.RdbSetUser(a.bot, s.User.TelegramID, "admin/stats")

	if edit {
		msgID := db.RdbGetAdminMsgID(a.bot, s.User.TelegramID)
		if msgID != 0 {
			return a.msgs.NewEditMarkUpMessage(s.User.TelegramID, msgID, &markUp, text)
		}
	}

	msgID, err := a.msgs.NewIDParseMarkUpMessage(s.User.TelegramID, &markUp, text)
	if err != nil {
		return errors.Wrap(err, "send stats")
	}
	db.RdbSetAdminMsgID(a.bot, s.User.TelegramID, msgID)

	return nil
}

func (a *Admin) CheckAdminCallback(s *model.Situation) error {
	if !a.isAdmin(s.User) {
		return a.msgs.SendAnswerCallback(s.CallbackQuery, assets.AdminText("admin_only_text"))
	}

	switch s.Command {
	case "admin/stats":
		if err := a.msgs.SendAnswerCallback(s.CallbackQuery, assets.AdminText("make_a_choice")); err != nil {
			return err
		}
		return a.sendStats(s, true)

	case "admin/change":
		param := strings.Split(s.CallbackQuery.Data, "?")[1]

		db.RdbSetUser(a.bot, s.User.TelegramID, "admin/change?"+param)

		if err := a.msgs.SendAnswerCallback(s.CallbackQuery, assets.AdminText("make_a_choice")); err != nil {
			return err
		}
		return a.msgs.NewParseMessage(s.User.TelegramID,
			assets.AdminText("type_new_value_text", param))
	}

	return errors.New("unknown admin callback: " + s.Command)
}

// CheckAdminMessage consumes a typed settings value when the admin's dialog
// level expects one.
func (a *Admin) CheckAdminMessage(s *model.Situation) error {
	if !a.isAdmin(s.User) {
		return errNotAdminInput
	}

	if !strings.HasPrefix(s.Params.Level, "admin/change?") {
		return errNotAdminInput
	}

	param := strings.Split(s.Params.Level, "?")[1]
	value := strings.TrimSpace(s.Message.Text)

	if err := a.applySetting(param, value); err != nil {
		return a.msgs.NewParseMessage(s.User.TelegramID, assets.AdminText("invalid_value_text"))
	}

	assets.SaveRewards(a.rewards)
	db.RdbSetUser(a.bot, s.User.TelegramID, "main")

	// The stats message the button lived on is stale now.
	db.DeleteOldAdminMsg(a.bot, s.User.TelegramID)

	return a.msgs.NewParseMessage(s.User.TelegramID,
		assets.AdminText("value_updated_text", param, value))
}

func (a *Admin) applySetting(param, value string) error {
	switch param {
	case referralAmountParam:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || amount <= 0 {
			return errors.New("invalid referral amount")
		}
		a.rewards.ReferralAmount = amount

	case minBalanceParam:
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil || amount <= 0 {
			return errors.New("invalid min balance")
		}
		a.rewards.MinWithdrawalBalance = amount

	case firstReferralsParam:
		count, err := strconv.Atoi(value)
		if err != nil || count < 0 {
			return errors.New("invalid referral threshold")
		}
		a.rewards.FirstWithdrawalMinReferrals = count

	default:
		return errors.New("unknown parameter: " + param)
	}

	return nil
}
