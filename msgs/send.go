package msgs

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/bots-empire/adnet-bot/model"
)

const parseModeHTML = "HTML"

type Service struct {
	bot *model.GlobalBot

	// developer chat for operator alerts; 0 disables them
	devChatID int64
}

func NewService(bot *model.GlobalBot, devChatID int64) *Service {
	return &Service{
		bot:       bot,
		devChatID: devChatID,
	}
}

func (s *Service) SendMsgToUser(msg tgbotapi.Chattable) error {
	if _, err := s.bot.Bot.Send(msg); err != nil {
		return errors.Wrap(err, "send msg to user")
	}
	return nil
}

func (s *Service) NewParseMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseModeHTML

	return s.SendMsgToUser(msg)
}

func (s *Service) NewParseMarkUpMessage(chatID int64, markUp interface{}, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseModeHTML
	msg.ReplyMarkup = markUp

	return s.SendMsgToUser(msg)
}

func (s *Service) NewIDParseMarkUpMessage(chatID int64, markUp interface{}, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseModeHTML
	msg.ReplyMarkup = markUp

	message, err := s.bot.Bot.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "send msg with id")
	}
	return message.MessageID, nil
}

func (s *Service) NewEditMarkUpMessage(chatID int64, msgID int, markUp *tgbotapi.InlineKeyboardMarkup, text string) error {
	msg := tgbotapi.NewEditMessageText(chatID, msgID, text)
	msg.ParseMode = parseModeHTML
	msg.ReplyMarkup = markUp

	return s.SendMsgToUser(msg)
}

func (s *Service) SendAnswerCallback(callback *tgbotapi.CallbackQuery, text string) error {
	answer := tgbotapi.NewCallback(callback.ID, text)

	if _, err := s.bot.Bot.Request(answer); err != nil {
		return errors.Wrap(err, "send answer callback")
	}
	return nil
}

func (s *Service) SendNotificationToDeveloper(text string) {
	if s.devChatID == 0 {
		return
	}

	msg := tgbotapi.NewMessage(s.devChatID, fmt.Sprintf("%s // %s", s.bot.BotLink, text))
	_ = s.SendMsgToUser(msg)
}
