package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type UserProfile struct {
	ID             string    `json:"id"`
	Phone          string    `json:"phone"`
	InviteCode     string    `json:"invite_code"`
	UsedInviteCode *string   `json:"used_invite_code,omitempty"`
	PublicID       int64     `json:"public_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type Identity struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

// AssetsSummary is a server-computed snapshot; the client only decodes
// and formats these values, it never recalculates them.
type AssetsSummary struct {
	USDTBalance   decimal.Decimal `json:"usdt_balance"`
	TotalPersonal decimal.Decimal `json:"total_personal"`
	TotalTeam     decimal.Decimal `json:"total_team"`
	TodayPersonal decimal.Decimal `json:"today_personal"`
	TodayTeam     decimal.Decimal `json:"today_team"`
}

type UserState struct {
	CurrentLevel int  `json:"current_level"`
	IsLocked     bool `json:"is_locked"`
	IsFunded     bool `json:"is_funded"`
	IsActivated  bool `json:"is_activated"`
}

type EarningResult struct {
	EarningAmount decimal.Decimal `json:"earning_amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

type DepositAddress struct {
	PayAddress  string      `json:"pay_address"`
	PaymentID   json.Number `json:"payment_id,omitempty"`
	Network     string      `json:"network"`
	PayCurrency string      `json:"pay_currency"`
}
