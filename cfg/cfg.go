package cfg

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	defaultRedisAddr   = "127.0.0.1:6379"
	defaultMetricsAddr = ":9100"
	defaultBotUsername = "TestTelegramAdNetwork_bot"
)

// Config is built once in main and passed down explicitly.
type Config struct {
	BotToken    string
	BotUsername string
	WebAppURL   string
	ChannelURL  string
	AdminChatID int64

	RedisAddr     string
	RedisPassword string

	MetricsAddr string

	DB DBConfig

	StoreTimeout time.Duration

	Rewards Rewards
}

type DBConfig struct {
	User     string
	Password string
	Name     string
}

// Rewards holds every amount and threshold the ledger compares against.
// All of them are overridable from env and editable by the admin.
type Rewards struct {
	ReferralAmount       float64 `json:"referral_amount"`
	MinWithdrawalBalance float64 `json:"min_withdrawal_balance"`

	FirstWithdrawalMinReferrals int `json:"first_withdrawal_min_referrals"`
	// SubsequentWithdrawalMinReferrals is shown in the help text but is not
	// checked by the eligibility gate, same as the bot always behaved.
	SubsequentWithdrawalMinReferrals int `json:"subsequent_withdrawal_min_referrals"`

	MaxAdsPerDay int     `json:"max_ads_per_day"`
	AdAmount     float64 `json:"ad_amount"`
}

func DefaultRewards() Rewards {
	return Rewards{
		ReferralAmount:                   0.01,
		MinWithdrawalBalance:             60.00,
		FirstWithdrawalMinReferrals:      15,
		SubsequentWithdrawalMinReferrals: 10,
		MaxAdsPerDay:                     10,
		AdAmount:                         0.01,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotUsername:   getEnv("TELEGRAM_BOT_USERNAME", defaultBotUsername),
		WebAppURL:     os.Getenv("WEB_APP_URL"),
		ChannelURL:    os.Getenv("TELEGRAM_CHANNEL_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", defaultRedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		MetricsAddr:   getEnv("METRICS_ADDR", defaultMetricsAddr),
		DB: DBConfig{
			User:     getEnv("MYSQL_USER", "root"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Name:     getEnv("MYSQL_DB", "adnet"),
		},
		StoreTimeout: getDuration("STORE_TIMEOUT", 3*time.Second),
		Rewards:      DefaultRewards(),
	}

	if c.BotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.WebAppURL == "" {
		return nil, errors.New("WEB_APP_URL is not set")
	}

	if admin := os.Getenv("ADMIN_CHAT_ID"); admin != "" {
		id, err := strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse ADMIN_CHAT_ID")
		}
		c.AdminChatID = id
	}

	c.Rewards.ReferralAmount = getFloat("REFERRAL_AMOUNT", c.Rewards.ReferralAmount)
	c.Rewards.MinWithdrawalBalance = getFloat("MIN_WITHDRAWAL_BALANCE", c.Rewards.MinWithdrawalBalance)
	c.Rewards.FirstWithdrawalMinReferrals = getInt("FIRST_WITHDRAWAL_MIN_REFERRALS", c.Rewards.FirstWithdrawalMinReferrals)
	c.Rewards.SubsequentWithdrawalMinReferrals = getInt("NEXT_WITHDRAWAL_MIN_REFERRALS", c.Rewards.SubsequentWithdrawalMinReferrals)
	c.Rewards.MaxAdsPerDay = getInt("MAX_ADS_PER_DAY", c.Rewards.MaxAdsPerDay)
	c.Rewards.AdAmount = getFloat("AD_AMOUNT", c.Rewards.AdAmount)

	return c, nil
}

func (c *Config) BotLink() string {
	return "https://t.me/" + c.BotUsername
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
