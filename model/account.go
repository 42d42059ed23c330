package model

import (
	"strconv"
	"time"
)

// Account is one user's earnings and counter state, persisted in the remote
// store at users/<userID>. Field names match the store schema.
type Account struct {
	UserID       string `json:"userId"`
	TelegramID   int64  `json:"telegramId"`
	TelegramName string `json:"telegramName"`
	Username     string `json:"username"`

	Balance float64 `json:"balance"`

	AdsWatched         int `json:"adsWatched"`
	DailyAdsWatched    int `json:"dailyAdsWatched"`
	Network1AdsWatched int `json:"network1AdsWatched"`
	Network2AdsWatched int `json:"network2AdsWatched"`

	Referrals        int     `json:"referrals"`
	ReferralEarnings float64 `json:"referralEarnings"`
	TotalEarnings    float64 `json:"totalEarnings"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`

	WithdrawalPending bool `json:"withdrawalPending"`
	LastReferralCount int  `json:"lastReferralCount"`

	JoinDate    int64 `json:"joinDate"`
	LastUpdated int64 `json:"lastUpdated"`
}

// Identity is what the transport layer knows about the caller.
type Identity struct {
	TelegramID int64
	FirstName  string
	LastName   string
	Username   string
}

func (i Identity) UserID() string {
	return AccountID(i.TelegramID)
}

func (i Identity) DisplayName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

func AccountID(telegramID int64) string {
	return "tg_" + strconv.FormatInt(telegramID, 10)
}

// ReferralEntry records one who-referred-whom fact, at most once per pair.
type ReferralEntry struct {
	ReferrerID string `json:"referrerId"`
	UserID     string `json:"userId"`
	TelegramID int64  `json:"telegramId"`
	ReferredAt int64  `json:"referredAt"`
}

// WithdrawalRequest is written when an eligible user asks to withdraw.
// Resolution happens outside this bot.
type WithdrawalRequest struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	RequestedAt int64   `json:"requestedAt"`
	Status      string  `json:"status"`
}

// RewardJob is one queued referral reward waiting for the outbox worker.
type RewardJob struct {
	ID            string
	ReferrerID    string
	NewUserID     string
	NewTelegramID int64
	Amount        float64
	Attempts      int
	CreatedAt     int64
}

// Stats are the aggregate totals shown by the admin /stats command.
type Stats struct {
	Users       int
	Referrals   int
	Withdrawals int
}

// ToFields flattens the account into the store's field map.
func (a *Account) ToFields() map[string]string {
	return map[string]string{
		"userId":             a.UserID,
		"telegramId":         strconv.FormatInt(a.TelegramID, 10),
		"telegramName":       a.TelegramName,
		"username":           a.Username,
		"balance":            formatAmount(a.Balance),
		"adsWatched":         strconv.Itoa(a.AdsWatched),
		"dailyAdsWatched":    strconv.Itoa(a.DailyAdsWatched),
		"network1AdsWatched": strconv.Itoa(a.Network1AdsWatched),
		"network2AdsWatched": strconv.Itoa(a.Network2AdsWatched),
		"referrals":          strconv.Itoa(a.Referrals),
		"referralEarnings":   formatAmount(a.ReferralEarnings),
		"totalEarnings":      formatAmount(a.TotalEarnings),
		"totalWithdrawals":   formatAmount(a.TotalWithdrawals),
		"withdrawalPending":  strconv.FormatBool(a.WithdrawalPending),
		"lastReferralCount":  strconv.Itoa(a.LastReferralCount),
		"joinDate":           strconv.FormatInt(a.JoinDate, 10),
		"lastUpdated":        strconv.FormatInt(a.LastUpdated, 10),
	}
}

// AccountFromFields is the inverse of ToFields. Missing or malformed fields
// fall back to zero values; records written by older bot versions are sparse.
func AccountFromFields(fields map[string]string) *Account {
	return &Account{
		UserID:             fields["userId"],
		TelegramID:         parseInt64(fields["telegramId"]),
		TelegramName:       fields["telegramName"],
		Username:           fields["username"],
		Balance:            parseAmount(fields["balance"]),
		AdsWatched:         parseInt(fields["adsWatched"]),
		DailyAdsWatched:    parseInt(fields["dailyAdsWatched"]),
		Network1AdsWatched: parseInt(fields["network1AdsWatched"]),
		Network2AdsWatched: parseInt(fields["network2AdsWatched"]),
		Referrals:          parseInt(fields["referrals"]),
		ReferralEarnings:   parseAmount(fields["referralEarnings"]),
		TotalEarnings:      parseAmount(fields["totalEarnings"]),
		TotalWithdrawals:   parseAmount(fields["totalWithdrawals"]),
		WithdrawalPending:  fields["withdrawalPending"] == "true",
		LastReferralCount:  parseInt(fields["lastReferralCount"]),
		JoinDate:           parseInt64(fields["joinDate"]),
		LastUpdated:        parseInt64(fields["lastUpdated"]),
	}
}

func NewAccount(identity Identity, now time.Time) *Account {
	ts := now.UnixMilli()
	return &Account{
		UserID:       identity.UserID(),
		TelegramID:   identity.TelegramID,
		TelegramName: identity.DisplayName(),
		Username:     identity.Username,
		JoinDate:     ts,
		LastUpdated:  ts,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
