package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodNFC     PaymentMethod = "nfc"
	PaymentMethodQR      PaymentMethod = "qr"
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodUnknown PaymentMethod = "unk"
)

// ParsePaymentMethod maps free-form client input onto the enum, falling
// back to unknown rather than rejecting the payment.
func ParsePaymentMethod(s string) PaymentMethod {
	switch PaymentMethod(s) {
	case PaymentMethodNFC, PaymentMethodQR, PaymentMethodCash:
		return PaymentMethod(s)
	default:
		return PaymentMethodUnknown
	}
}

// Payment is an immutable fare record. NewBalance is the passenger wallet
// balance after this payment; Timestamp is set at creation and never changes.
type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	PassengerID uint            `json:"passenger_id" gorm:"index"`
	TripID      *uint           `json:"trip_id,omitempty" gorm:"index"`
	Fare        decimal.Decimal `json:"fare" gorm:"type:numeric(10,2)"`
	NewBalance  decimal.Decimal `json:"new_balance" gorm:"type:numeric(10,2)"`
	Timestamp   time.Time       `json:"timestamp"`
	Method      PaymentMethod   `json:"payment_method" gorm:"size:4;column:payment_method"`
}

// Transfer is an immutable record of a peer-to-peer wallet movement.
// Either side may be a passenger or a driver wallet.
type Transfer struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	SenderKind       ActorKind       `json:"sender_kind" gorm:"size:16"`
	SenderWalletID   uint            `json:"sender_wallet_id"`
	ReceiverKind     ActorKind       `json:"receiver_kind" gorm:"size:16"`
	ReceiverWalletID uint            `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Timestamp        time.Time       `json:"timestamp"`
}

func (t *Transfer) Sender() WalletRef {
	return WalletRef{Kind: t.SenderKind, WalletID: t.SenderWalletID}
}

func (t *Transfer) Receiver() WalletRef {
	return WalletRef{Kind: t.ReceiverKind, WalletID: t.ReceiverWalletID}
}

// NFCCard links a physical card uid to a passenger account.
type NFCCard struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UID         string `json:"uid" gorm:"uniqueIndex;size:100"`
	PassengerID uint   `json:"passenger_id" gorm:"index"`
}
