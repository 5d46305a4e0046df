package wallet

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/queue"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// Service is the wallet ledger. Every mutation is a check-then-act
// sequence executed inside a transaction that row-locks the wallets
// involved, so concurrent fare payments cannot both pass the sufficiency
// check against a stale balance.
type Service struct {
	txm        ports.TxManager
	wallets    ports.WalletRepository
	passengers ports.PassengerRepository
	drivers    ports.DriverRepository
	transfers  ports.TransferRepository
	mq         queue.MessageQueue
	log        *zap.Logger
	now        func() time.Time
}

func NewService(
	txm ports.TxManager,
	wallets ports.WalletRepository,
	passengers ports.PassengerRepository,
	drivers ports.DriverRepository,
	transfers ports.TransferRepository,
	mq queue.MessageQueue,
	log *zap.Logger,
) *Service {
	return &Service{
		txm:        txm,
		wallets:    wallets,
		passengers: passengers,
		drivers:    drivers,
		transfers:  transfers,
		mq:         mq,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	w, err := s.wallets.PassengerWallet(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.E(domain.CodeNotFound, "passenger wallet not found")
	}
	return w, nil
}

func (s *Service) DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	w, err := s.wallets.DriverWallet(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.E(domain.CodeNotFound, "driver wallet not found")
	}
	return w, nil
}

func (s *Service) Debit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.E(domain.CodeValidation, "amount must be positive")
	}

	var newBalance decimal.Decimal
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.lockWallet(ctx, ref)
		if err != nil {
			return err
		}
		if w.balance.LessThan(amount) {
			return domain.E(domain.CodeInsufficientFunds, "insufficient funds")
		}
		newBalance = w.balance.Sub(amount)
		return s.writeBalance(ctx, w, newBalance, w.pending)
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info("wallet debited",
		zap.String("kind", string(ref.Kind)),
		zap.Uint("actor_id", ref.ID),
		zap.String("amount", amount.String()),
		zap.String("new_balance", newBalance.String()),
	)
	return newBalance, nil
}

func (s *Service) Credit(ctx context.Context, ref domain.ActorRef, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.E(domain.CodeValidation, "amount must be positive")
	}

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.lockWallet(ctx, ref)
		if err != nil {
			return err
		}
		return s.writeBalance(ctx, w, w.balance.Add(amount), w.pending)
	})
	if err != nil {
		return err
	}

	s.log.Info("wallet credited",
		zap.String("kind", string(ref.Kind)),
		zap.Uint("actor_id", ref.ID),
		zap.String("amount", amount.String()),
	)
	return nil
}

func (s *Service) CreditPending(ctx context.Context, driverID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.E(domain.CodeValidation, "amount must be positive")
	}

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wallets.DriverWalletForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.E(domain.CodeNotFound, "driver wallet not found")
		}
		return s.wallets.UpdateDriverBalances(ctx, w.ID, w.Balance, w.PendingBalance.Add(amount))
	})
}

// Settle moves the entire pending balance into the spendable balance.
// Nothing pending is a no-op; concurrent settlement from a location-update
// race and an explicit end-trip call is therefore safe.
func (s *Service) Settle(ctx context.Context, driverID uint) error {
	var settled decimal.Decimal
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wallets.DriverWalletForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.E(domain.CodeNotFound, "driver wallet not found")
		}
		if w.PendingBalance.IsZero() {
			return nil
		}
		settled = w.PendingBalance
		return s.wallets.UpdateDriverBalances(ctx, w.ID, w.Balance.Add(w.PendingBalance), decimal.Zero)
	})
	if err != nil {
		return err
	}

	if !settled.IsZero() {
		telemetry.SettlementsTotal.Inc()
		s.log.Info("driver wallet settled",
			zap.Uint("driver_id", driverID),
			zap.String("amount", settled.String()),
		)
	}
	return nil
}

func (s *Service) SetBalance(ctx context.Context, passengerID uint, balance decimal.Decimal) error {
	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wallets.PassengerWalletForUpdate(ctx, passengerID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.E(domain.CodeNotFound, "passenger wallet not found")
		}
		return s.wallets.UpdatePassengerBalance(ctx, w.ID, balance)
	})
}

func (s *Service) Transfer(ctx context.Context, senderPhone, receiverPhone string, amount decimal.Decimal) (*domain.Transfer, error) {
	if !amount.IsPositive() {
		return nil, domain.E(domain.CodeValidation, "amount must be positive")
	}

	sender, err := s.resolveByPhone(ctx, senderPhone)
	if err != nil {
		return nil, err
	}
	receiver, err := s.resolveByPhone(ctx, receiverPhone)
	if err != nil {
		return nil, err
	}

	var transfer *domain.Transfer
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		locked := map[domain.ActorRef]*lockedWallet{}
		for _, ref := range domain.WalletLockOrder(*sender, *receiver) {
			w, err := s.lockWallet(ctx, ref)
			if err != nil {
				return err
			}
			locked[ref] = w
		}

		sw, rw := locked[*sender], locked[*receiver]
		if sw.balance.LessThan(amount) {
			return domain.E(domain.CodeInsufficientFunds, "insufficient funds")
		}
		if *sender == *receiver {
			// net-zero movement; record it without touching the balance
		} else {
			if err := s.writeBalance(ctx, sw, sw.balance.Sub(amount), sw.pending); err != nil {
				return err
			}
			if err := s.writeBalance(ctx, rw, rw.balance.Add(amount), rw.pending); err != nil {
				return err
			}
		}

		transfer = &domain.Transfer{
			SenderKind:       sender.Kind,
			SenderWalletID:   sw.walletID,
			ReceiverKind:     receiver.Kind,
			ReceiverWalletID: rw.walletID,
			Amount:           amount,
			Timestamp:        s.now(),
		}
		return s.transfers.Save(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.publish("wallet.transfer", map[string]interface{}{
		"event_id":    uuid.NewString(),
		"transfer_id": transfer.ID,
		"amount":      amount.String(),
		"sender":      transfer.Sender(),
		"receiver":    transfer.Receiver(),
	})
	s.log.Info("wallet transfer completed",
		zap.Uint("transfer_id", transfer.ID),
		zap.String("amount", amount.String()),
	)
	return transfer, nil
}

// resolveByPhone resolves a phone number to either actor kind; the phone
// space is shared, so at most one actor can own a number.
func (s *Service) resolveByPhone(ctx context.Context, phone string) (*domain.ActorRef, error) {
	p, err := s.passengers.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if p != nil {
		ref := p.Ref()
		return &ref, nil
	}
	d, err := s.drivers.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if d != nil {
		ref := d.Ref()
		return &ref, nil
	}
	return nil, domain.Errf(domain.CodeNotFound, "no actor found for phone %s", phone)
}

// lockedWallet is the common view over both wallet kinds while the row
// lock is held.
type lockedWallet struct {
	ref      domain.ActorRef
	walletID uint
	balance  decimal.Decimal
	pending  decimal.Decimal
}

func (s *Service) lockWallet(ctx context.Context, ref domain.ActorRef) (*lockedWallet, error) {
	switch ref.Kind {
	case domain.ActorKindPassenger:
		w, err := s.wallets.PassengerWalletForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, domain.E(domain.CodeNotFound, "passenger wallet not found")
		}
		return &lockedWallet{ref: ref, walletID: w.ID, balance: w.Balance}, nil
	case domain.ActorKindDriver:
		w, err := s.wallets.DriverWalletForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, domain.E(domain.CodeNotFound, "driver wallet not found")
		}
		return &lockedWallet{ref: ref, walletID: w.ID, balance: w.Balance, pending: w.PendingBalance}, nil
	default:
		return nil, domain.Errf(domain.CodeValidation, "unknown actor kind %q", ref.Kind)
	}
}

func (s *Service) writeBalance(ctx context.Context, w *lockedWallet, balance, pending decimal.Decimal) error {
	if w.ref.Kind == domain.ActorKindPassenger {
		return s.wallets.UpdatePassengerBalance(ctx, w.walletID, balance)
	}
	return s.wallets.UpdateDriverBalances(ctx, w.walletID, balance, pending)
}

func (s *Service) publish(subject string, payload map[string]interface{}) {
	if s.mq == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.mq.Publish(subject, data); err != nil {
		s.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
