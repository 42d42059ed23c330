package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/assets"
	"github.com/bots-empire/adnet-bot/db"
	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/log"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/msgs"
	"github.com/bots-empire/adnet-bot/services/administrator"
	"github.com/bots-empire/adnet-bot/services/auth"
	"github.com/bots-empire/adnet-bot/utils"
)

const updatePrintHeader = "update  // adnet-bot:  %s"

type MessagesHandlers struct {
	Handlers map[string]model.Handler
}

func (h *MessagesHandlers) GetHandler(command string) model.Handler {
	return h.Handlers[command]
}

func (h *MessagesHandlers) Init(userSrv *Users, adminSrv *administrator.Admin) {
	h.OnCommand("/start", model.HandlerFunc(userSrv.StartCommand))
	h.OnCommand("/balance", model.HandlerFunc(userSrv.BalanceCommand))
	h.OnCommand("/referrals", model.HandlerFunc(userSrv.ReferralsCommand))
	h.OnCommand("/withdraw", model.HandlerFunc(userSrv.WithdrawCommand))
	h.OnCommand("/help", model.HandlerFunc(userSrv.HelpCommand))
	h.OnCommand("/stats", model.HandlerFunc(adminSrv.StatsCommand))
}

func (h *MessagesHandlers) OnCommand(command string, handler model.Handler) {
	h.Handlers[command] = handler
}

type Users struct {
	bot    *model.GlobalBot
	auth   *auth.Auth
	ledger *ledger.Ledger
	admin  *administrator.Admin

	Msgs *msgs.Service
}

func NewUsersService(bot *model.GlobalBot, authSrv *auth.Auth, l *ledger.Ledger, admin *administrator.Admin, msgsSrv *msgs.Service) *Users {
	return &Users{
		bot:    bot,
		auth:   authSrv,
		ledger: l,
		admin:  admin,
		Msgs:   msgsSrv,
	}
}

func (u *Users) ActionsWithUpdates(logger log.Logger, sortCentre *utils.Spreader) {
	for update := range u.bot.Chanel {
		localUpdate := update

		go u.checkUpdate(&localUpdate, logger, sortCentre)
	}
}

func (u *Users) checkUpdate(update *tgbotapi.Update, logger log.Logger, sortCentre *utils.Spreader) {
	defer u.panicCatcher(update, logger)

	if update.Message == nil && update.CallbackQuery == nil {
		return
	}

	if update.Message != nil && update.Message.PinnedMessage != nil {
		return
	}

	u.printNewUpdate(update, logger)

	if update.Message != nil {
		user, created, err := u.auth.CheckingTheUser(update.Message)
		if err != nil {
			u.smthWentWrong(update.Message.Chat.ID)
			logger.Warn("err with check user: %s", err.Error())
			return
		}

		situation := createSituationFromMsg(u.bot, update.Message, user)
		situation.NewAccount = created

		u.checkMessage(situation, logger, sortCentre)
		return
	}

	situation, err := u.createSituationFromCallback(update.CallbackQuery)
	if err != nil {
		u.smthWentWrong(update.CallbackQuery.Message.Chat.ID)
		logger.Warn("err with create situation from callback: %s", err.Error())
		return
	}

	u.checkCallbackQuery(situation, logger, sortCentre)
}

func (u *Users) printNewUpdate(update *tgbotapi.Update, logger log.Logger) {
	model.HandleUpdates.WithLabelValues(u.bot.BotLink).Inc()

	if update.Message != nil && update.Message.Text != "" {
		logger.Info(updatePrintHeader, update.Message.Text)
		return
	}

	if update.CallbackQuery != nil {
		logger.Info(updatePrintHeader, update.CallbackQuery.Data)
	}
}

func (u *Users) panicCatcher(update *tgbotapi.Update, logger log.Logger) {
	r := recover()
	if r == nil {
		return
	}

	text := fmt.Sprintf("panic in update check: %v", r)
	u.Msgs.SendNotificationToDeveloper(text)
	logger.Warn(text)
}

func createSituationFromMsg(bot *model.GlobalBot, message *tgbotapi.Message, user *model.Account) *model.Situation {
	return &model.Situation{
		Message: message,
		User:    user,
		Params: &model.Parameters{
			Level: db.GetLevel(bot, message.From.ID),
		},
	}
}

func (u *Users) createSituationFromCallback(callbackQuery *tgbotapi.CallbackQuery) (*model.Situation, error) {
	user, err := u.auth.GetUser(callbackQuery.From.ID)
	if err != nil {
		return &model.Situation{}, err
	}

	return &model.Situation{
		CallbackQuery: callbackQuery,
		User:          user,
		Command:       strings.Split(callbackQuery.Data, "?")[0],
		Params: &model.Parameters{
			Level: db.GetLevel(u.bot, callbackQuery.From.ID),
		},
	}, nil
}

func (u *Users) checkMessage(situation *model.Situation, logger log.Logger, sortCentre *utils.Spreader) {
	if u.bot.MaintenanceMode && situation.User.TelegramID != u.bot.AdminChatID {
		msg := tgbotapi.NewMessage(situation.Message.Chat.ID, assets.LangText("maintenance_text"))
		_ = u.Msgs.SendMsgToUser(msg)
		return
	}

	if situation.Command == "" {
		situation.Command = commandFromText(situation.Message.Text)
	}

	if situation.Command != "" {
		handler := u.bot.MessageHandler.GetHandler(situation.Command)

		if handler != nil {
			sortCentre.ServeHandler(handler, situation, func(err error) {
				text := fmt.Sprintf("error with serve user msg command: %s", err.Error())
				u.Msgs.SendNotificationToDeveloper(text)

				logger.Warn(text)
				u.smthWentWrong(situation.Message.Chat.ID)
			})
			return
		}
	}

	// Not a command: a dialog level may be waiting for this input.
	if err := u.admin.CheckAdminMessage(situation); err == nil {
		return
	}

	u.smthWentWrong(situation.Message.Chat.ID)
}

// commandFromText strips bot mentions and deep-link payloads, so both
// "/start ref" and "/balance@SomeBot" route by their bare command.
func commandFromText(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	command := strings.Split(text, " ")[0]
	return strings.Split(command, "@")[0]
}

func (u *Users) smthWentWrong(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, assets.LangText("user_level_not_defined"))
	_ = u.Msgs.SendMsgToUser(msg)
}

func (u *Users) StartCommand(s *model.Situation) error {
	db.RdbSetUser(u.bot, s.User.TelegramID, "main")

	rewards := u.ledger.Rewards()

	var text string
	if s.NewAccount {
		text = assets.LangText("welcome_text",
			s.User.TelegramName,
			s.User.TelegramID,
			rewards.MaxAdsPerDay,
			rewards.ReferralAmount)

		if strings.Contains(s.Message.Text, " ") {
			text += assets.LangText("welcome_referred_text")
		}
	} else {
		text = assets.LangText("welcome_back_text",
			s.Message.From.FirstName,
			s.User.Balance,
			s.User.DailyAdsWatched,
			rewards.MaxAdsPerDay,
			s.User.Referrals)
	}

	markUp := u.mainMenuMarkUp(s.User)

	return u.Msgs.NewParseMarkUpMessage(s.User.TelegramID, &markUp, text)
}

func (u *Users) mainMenuMarkUp(user *model.Account) tgbotapi.InlineKeyboardMarkup {
	appURL := fmt.Sprintf("%s?tg_id=%d&tg_name=%s",
		u.bot.WebAppURL, user.TelegramID, url.QueryEscape(user.TelegramName))

	rows := []msgs.InlineRow{
		msgs.NewIlRow(msgs.NewIlURLButton("open_app_button", appURL)),
	}
	if u.bot.ChannelURL != "" {
		rows = append(rows, msgs.NewIlRow(msgs.NewIlURLButton("join_channel_button", u.bot.ChannelURL)))
	}

	return msgs.NewIlMarkUp(rows...).Build()
}

func (u *Users) BalanceCommand(s *model.Situation) error {
	db.RdbSetUser(u.bot, s.User.TelegramID, "main")

	text := assets.LangText("balance_text",
		s.User.Balance,
		s.User.TotalEarnings,
		s.User.ReferralEarnings,
		s.User.AdsWatched,
		s.User.DailyAdsWatched,
		u.ledger.Rewards().MaxAdsPerDay,
		s.User.Referrals)

	return u.Msgs.NewParseMessage(s.User.TelegramID, text)
}

func (u *Users) ReferralsCommand(s *model.Situation) error {
	db.RdbSetUser(u.bot, s.User.TelegramID, "main")

	referralLink := u.bot.BotLink + "?start=" + s.User.UserID

	text := assets.LangText("referrals_text",
		s.User.Referrals,
		s.User.ReferralEarnings,
		referralLink,
		u.ledger.Rewards().ReferralAmount)

	shareURL := "https://t.me/share/url?url=" + url.QueryEscape(referralLink) +
		"&text=" + url.QueryEscape("Join and earn!")

	markUp := msgs.NewIlMarkUp(
		msgs.NewIlRow(msgs.NewIlURLButton("share_link_button", shareURL)),
	).Build()

	return u.Msgs.NewParseMarkUpMessage(s.User.TelegramID, &markUp, text)
}

func (u *Users) WithdrawCommand(s *model.Situation) error {
	db.RdbSetUser(u.bot, s.User.TelegramID, "main")

	rewards := u.ledger.Rewards()
	result := ledger.CheckEligibility(s.User, rewards)

	switch result.State {
	case model.WithdrawalPendingState:
		msg := tgbotapi.NewMessage(s.User.TelegramID, assets.LangText("withdraw_pending_text"))
		return u.Msgs.SendMsgToUser(msg)

	case model.NeedsReferrals:
		return u.Msgs.NewParseMessage(s.User.TelegramID, assets.LangText("withdraw_need_referrals_text",
			result.MissingReferrals,
			s.User.Referrals,
			rewards.FirstWithdrawalMinReferrals))

	case model.NeedsBalance:
		return u.Msgs.NewParseMessage(s.User.TelegramID, assets.LangText("withdraw_insufficient_text",
			rewards.MinWithdrawalBalance,
			s.User.Balance,
			result.MissingBalance))
	}

	markUp := msgs.NewIlMarkUp(
		msgs.NewIlRow(msgs.NewIlDataButton("confirm_withdraw_button", "/withdraw_confirm")),
	).Build()

	text := assets.LangText("withdraw_ready_text",
		s.User.Balance,
		s.User.Referrals)

	return u.Msgs.NewParseMarkUpMessage(s.User.TelegramID, &markUp, text)
}

func (u *Users) HelpCommand(s *model.Situation) error {
	db.RdbSetUser(u.bot, s.User.TelegramID, "main")

	rewards := u.ledger.Rewards()

	text := assets.LangText("help_text",
		rewards.MaxAdsPerDay,
		rewards.AdAmount,
		rewards.ReferralAmount,
		rewards.FirstWithdrawalMinReferrals,
		rewards.MinWithdrawalBalance,
		rewards.SubsequentWithdrawalMinReferrals)

	return u.Msgs.NewParseMessage(s.User.TelegramID, text)
}

func (u *Users) refreshUser(s *model.Situation) error {
	user, err := u.ledger.GetAccount(context.Background(), s.User.UserID)
	if err != nil {
		return errors.Wrap(err, "refresh user")
	}

	s.User = user
	return nil
}
