package auth

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/model"
)

type Auth struct {
	bot    *model.GlobalBot
	ledger *ledger.Ledger
}

func NewAuthService(bot *model.GlobalBot, l *ledger.Ledger) *Auth {
	return &Auth{
		bot:    bot,
		ledger: l,
	}
}

// CheckingTheUser resolves the caller's account, creating it on first
// contact. created reports whether this message registered the user.
func (a *Auth) CheckingTheUser(message *tgbotapi.Message) (user *model.Account, created bool, err error) {
	ctx := context.Background()

	account, err := a.ledger.GetAccount(ctx, model.AccountID(message.From.ID))
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, false, errors.Wrap(err, "get user")
	}

	identity := model.Identity{
		TelegramID: message.From.ID,
		FirstName:  message.From.FirstName,
		LastName:   message.From.LastName,
		Username:   message.From.UserName,
	}

	referrerID := pullReferrerID(message)

	account, err = a.ledger.CreateAccount(ctx, identity, referrerID)
	if err != nil {
		return nil, false, errors.Wrap(err, "add new user")
	}

	model.TotalIncome.WithLabelValues(a.bot.BotLink).Inc()

	source := "direct"
	if referrerID != "" {
		source = "referral"
	}
	model.IncomeBySource.WithLabelValues(a.bot.BotLink, source).Inc()

	return account, true, nil
}

func (a *Auth) GetUser(userID int64) (*model.Account, error) {
	return a.ledger.GetAccount(context.Background(), model.AccountID(userID))
}

// pullReferrerID reads the deep-link payload of a /start message. The
// payload is the referrer's store id, e.g. tg_123456.
func pullReferrerID(message *tgbotapi.Message) string {
	readParams := strings.Split(message.Text, " ")
	if len(readParams) < 2 {
		return ""
	}

	referrerID := strings.TrimSpace(readParams[1])
	if !strings.HasPrefix(referrerID, "tg_") {
		return ""
	}

	return referrerID
}
