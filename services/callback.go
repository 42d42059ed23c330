package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/assets"
	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/log"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/utils"
)

type CallBackHandlers struct {
	Handlers map[string]model.Handler
}

func (h *CallBackHandlers) GetHandler(command string) model.Handler {
	return h.Handlers[command]
}

func (h *CallBackHandlers) Init(userSrv *Users) {
	h.OnCommand("/withdraw_confirm", model.HandlerFunc(userSrv.WithdrawConfirmCommand))
}

func (h *CallBackHandlers) OnCommand(command string, handler model.Handler) {
	h.Handlers[command] = handler
}

func (u *Users) checkCallbackQuery(s *model.Situation, logger log.Logger, sortCentre *utils.Spreader) {
	if strings.Contains(s.Command, "admin") || strings.Contains(s.Params.Level, "admin") {
		if err := u.admin.CheckAdminCallback(s); err != nil {
			text := fmt.Sprintf("error with serve admin callback command: %s", err.Error())
			u.Msgs.SendNotificationToDeveloper(text)

			logger.Warn(text)
		}
		return
	}

	handler := u.bot.CallbackHandler.GetHandler(s.Command)

	if handler != nil {
		sortCentre.ServeHandler(handler, s, func(err error) {
			text := fmt.Sprintf("error with serve user callback command: %s", err.Error())
			u.Msgs.SendNotificationToDeveloper(text)

			logger.Warn(text)
			u.smthWentWrong(s.CallbackQuery.Message.Chat.ID)
		})
		return
	}

	text := fmt.Sprintf("get callback data='%s', but they didn't react in any way", s.CallbackQuery.Data)
	u.Msgs.SendNotificationToDeveloper(text)
	logger.Warn(text)
}

// WithdrawConfirmCommand re-checks eligibility on a fresh record before
// taking the request: the inline button can be pressed long after the
// message it was attached to.
func (u *Users) WithdrawConfirmCommand(s *model.Situation) error {
	if err := u.refreshUser(s); err != nil {
		return err
	}

	rewards := u.ledger.Rewards()
	result := ledger.CheckEligibility(s.User, rewards)
	if result.State != model.Eligible {
		return u.WithdrawCommand(s)
	}

	request, err := u.ledger.RequestWithdrawal(context.Background(), s.User)
	if errors.Is(err, model.ErrConcurrentUpdateLost) {
		msg := assets.LangText("withdraw_pending_text")
		return u.Msgs.SendAnswerCallback(s.CallbackQuery, msg)
	}
	if err != nil {
		return errors.Wrap(err, "request withdrawal")
	}

	model.WithdrawalRequests.WithLabelValues(u.bot.BotLink).Inc()

	_ = u.Msgs.SendAnswerCallback(s.CallbackQuery, assets.LangText("withdraw_callback_done"))

	return u.Msgs.NewParseMessage(s.User.TelegramID,
		assets.LangText("withdraw_accepted_text", request.Amount))
}
