package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Every actor owns exactly one wallet for its lifetime; the wallet row is
// created in the same transaction as the actor and removed only on cascade.

type PassengerWallet struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	PassengerID uint            `json:"passenger_id" gorm:"uniqueIndex"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:numeric(12,2)"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type DriverWallet struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	DriverID uint            `json:"driver_id" gorm:"uniqueIndex"`
	Balance  decimal.Decimal `json:"balance" gorm:"type:numeric(12,2)"`

	// PendingBalance accumulates fares until the driver re-enters the
	// route zone or ends the trip explicitly, when it settles into Balance.
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(12,2)"`

	UpdatedAt time.Time `json:"updated_at"`
}

// WalletRef points at either wallet kind without a reflective foreign key.
type WalletRef struct {
	Kind     ActorKind `json:"kind"`
	WalletID uint      `json:"wallet_id"`
}
