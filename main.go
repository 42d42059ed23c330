package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/mbndr/figlet4go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roylee0704/gron"

	"github.com/bots-empire/adnet-bot/assets"
	"github.com/bots-empire/adnet-bot/cfg"
	"github.com/bots-empire/adnet-bot/db"
	"github.com/bots-empire/adnet-bot/ledger"
	"github.com/bots-empire/adnet-bot/log"
	"github.com/bots-empire/adnet-bot/model"
	"github.com/bots-empire/adnet-bot/msgs"
	"github.com/bots-empire/adnet-bot/services"
	"github.com/bots-empire/adnet-bot/services/administrator"
	"github.com/bots-empire/adnet-bot/services/auth"
	"github.com/bots-empire/adnet-bot/store"
	"github.com/bots-empire/adnet-bot/utils"
)

const (
	updateTimeout  = 60
	workerCount    = 16
	outboxInterval = 15 * time.Second
)

func main() {
	printBanner()

	logger := log.NewDefaultLogger()

	config, err := cfg.Load()
	if err != nil {
		logger.Fatal("failed to load config: %s", err.Error())
	}

	assets.UploadTexts()
	rewards := assets.UploadRewards(config.Rewards)

	bot := model.NewBot(config.BotToken, config.BotUsername, config.WebAppURL, config.ChannelURL, config.AdminChatID)
	bot.Rdb = model.StartRedis(config.RedisAddr, config.RedisPassword)

	dataBase := db.UploadDataBase(config.DB)
	outbox := db.NewOutbox(dataBase)

	remoteStore := store.NewRedisStore(bot.Rdb, config.StoreTimeout)
	rewardLedger := ledger.New(remoteStore, outbox, rewards, logger)

	msgsSrv := msgs.NewService(bot, config.AdminChatID)
	authSrv := auth.NewAuthService(bot, rewardLedger)
	adminSrv := administrator.NewAdminService(bot, rewardLedger, outbox, rewards, msgsSrv)
	userSrv := services.NewUsersService(bot, authSrv, rewardLedger, adminSrv, msgsSrv)

	messageHandlers := &services.MessagesHandlers{Handlers: map[string]model.Handler{}}
	messageHandlers.Init(userSrv, adminSrv)
	bot.MessageHandler = messageHandlers

	callbackHandlers := &services.CallBackHandlers{Handlers: map[string]model.Handler{}}
	callbackHandlers.Init(userSrv)
	bot.CallbackHandler = callbackHandlers

	ctx := context.Background()

	go startMetricsServer(config.MetricsAddr, logger)

	worker := db.NewRewardWorker(outbox, rewardLedger, logger, bot.BotLink, outboxInterval)
	go worker.Start(ctx)

	startDailyReset(ctx, rewardLedger, logger)

	bot.StartListening(updateTimeout)

	logger.Info("bot is running: %s", bot.BotLink)

	sortCentre := utils.NewSpreader(workerCount)
	userSrv.ActionsWithUpdates(logger, sortCentre)
}

func startMetricsServer(addr string, logger log.Logger) {
	http.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Warn("metrics server stopped: %s", err.Error())
	}
}

func startDailyReset(ctx context.Context, rewardLedger *ledger.Ledger, logger log.Logger) {
	c := gron.New()
	c.AddFunc(gron.Every(24*time.Hour).At("00:00"), func() {
		count, err := rewardLedger.ResetDailyCounters(ctx)
		if err != nil {
			logger.Warn("daily counter reset: %s", err.Error())
			return
		}
		logger.Info("daily ad counters reset for %d accounts", count)
	})
	c.Start()
}

func printBanner() {
	ascii := figlet4go.NewAsciiRender()

	render, err := ascii.Render("AdNet Bot")
	if err != nil {
		return
	}

	color.New(color.FgHiGreen).Print(render)
	fmt.Println()
}
