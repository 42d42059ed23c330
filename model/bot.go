package model

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

type GlobalBot struct {
	Bot    *tgbotapi.BotAPI
	Chanel tgbotapi.UpdatesChannel
	Rdb    *redis.Client

	MessageHandler  GlobalHandlers
	CallbackHandler GlobalHandlers

	BotToken    string
	BotUsername string
	BotLink     string
	WebAppURL   string
	ChannelURL  string
	AdminChatID int64

	MaintenanceMode bool
}

type GlobalHandlers interface {
	GetHandler(command string) Handler
}

type Handler interface {
	Serve(situation *Situation) error
}

type HandlerFunc func(s *Situation) error

func (f HandlerFunc) Serve(s *Situation) error {
	return f(s)
}

type Situation struct {
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	User          *Account
	NewAccount    bool
	Command       string
	Params        *Parameters
}

type Parameters struct {
	Level string
}

func NewBot(token, username, webAppURL, channelURL string, adminChatID int64) *GlobalBot {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("Failed to connect bot: %s\n", err.Error())
	}

	return &GlobalBot{
		Bot:         botAPI,
		BotToken:    token,
		BotUsername: username,
		BotLink:     "https://t.me/" + username,
		WebAppURL:   webAppURL,
		ChannelURL:  channelURL,
		AdminChatID: adminChatID,
	}
}

func (b *GlobalBot) StartListening(timeout int) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout

	b.Chanel = b.Bot.GetUpdatesChan(u)
}

func StartRedis(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
}
