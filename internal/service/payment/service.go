package payment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/adapter/queue"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

// Service orchestrates fare transactions: eligibility checks, the wallet
// debit/credit pair and the immutable payment record. The record and both
// wallet mutations are applied as one transaction; a failure anywhere rolls
// the whole fare back.
type Service struct {
	txm        ports.TxManager
	trips      ports.TripRepository
	passengers ports.PassengerRepository
	drivers    ports.DriverRepository
	wallets    ports.WalletRepository
	payments   ports.PaymentRepository
	devices    ports.DeviceRepository
	cards      ports.NFCCardRepository
	walletSvc  ports.WalletService
	mq         queue.MessageQueue
	log        *zap.Logger
	now        func() time.Time
}

func NewService(
	txm ports.TxManager,
	trips ports.TripRepository,
	passengers ports.PassengerRepository,
	drivers ports.DriverRepository,
	wallets ports.WalletRepository,
	payments ports.PaymentRepository,
	devices ports.DeviceRepository,
	cards ports.NFCCardRepository,
	walletSvc ports.WalletService,
	mq queue.MessageQueue,
	log *zap.Logger,
) *Service {
	return &Service{
		txm:        txm,
		trips:      trips,
		passengers: passengers,
		drivers:    drivers,
		wallets:    wallets,
		payments:   payments,
		devices:    devices,
		cards:      cards,
		walletSvc:  walletSvc,
		mq:         mq,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) ProcessFare(ctx context.Context, in ports.ProcessFareInput) (*domain.Payment, error) {
	trip, err := s.trips.FindByID(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "trip not found")
	}

	passenger, err := s.passengers.FindByUID(ctx, strings.TrimSpace(in.PassengerUID))
	if err != nil {
		return nil, err
	}
	if passenger == nil {
		return nil, domain.E(domain.CodeNotFound, "passenger not found")
	}

	driver, err := s.drivers.FindByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}
	if driver != nil &&
		strings.EqualFold(strings.TrimSpace(driver.UID), strings.TrimSpace(in.PassengerUID)) {
		return nil, domain.E(domain.CodeForbidden, "a driver cannot pay for their own trip")
	}

	payment, err := s.applyFare(ctx, passenger, &trip.ID, trip.DriverID, in.Fare, in.Method)
	if err != nil {
		return nil, err
	}

	s.afterPayment(payment)
	return payment, nil
}

// ProcessFareByQRToken resolves the trip by its current QR token and then
// performs the same wallet steps as ProcessFare. The self-payment check is
// deliberately absent on this path; see DESIGN.md.
func (s *Service) ProcessFareByQRToken(ctx context.Context, token, passengerUID string, fare decimal.Decimal) (*domain.Payment, error) {
	if token == "" || passengerUID == "" {
		return nil, domain.E(domain.CodeValidation, "missing token or uid")
	}

	trip, err := s.trips.FindByQRToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "trip not found for token")
	}

	passenger, err := s.passengers.FindByUID(ctx, strings.TrimSpace(passengerUID))
	if err != nil {
		return nil, err
	}
	if passenger == nil {
		return nil, domain.E(domain.CodeNotFound, "passenger not found")
	}

	payment, err := s.applyFare(ctx, passenger, &trip.ID, trip.DriverID, fare, domain.PaymentMethodQR)
	if err != nil {
		return nil, err
	}

	s.afterPayment(payment)
	return payment, nil
}

func (s *Service) ProcessDeviceBalanceUpdate(ctx context.Context, in ports.DeviceBalanceInput) (*ports.DeviceBalanceResult, error) {
	passenger, err := s.resolveDeviceUID(ctx, in.PassengerUID)
	if err != nil {
		return nil, err
	}

	switch in.Action {
	case ports.DeviceBalanceTopup:
		return s.topup(ctx, passenger, in.NewBalance)
	case ports.DeviceBalancePayment:
		return s.devicePayment(ctx, passenger, in)
	default:
		return nil, domain.Errf(domain.CodeValidation, "invalid action %q", in.Action)
	}
}

// resolveDeviceUID maps the uid an NFC validator sends to a passenger
// account: a passenger uid directly, or the uid of a registered card.
func (s *Service) resolveDeviceUID(ctx context.Context, uid string) (*domain.Passenger, error) {
	uid = strings.TrimSpace(uid)
	p, err := s.passengers.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	card, err := s.cards.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if card != nil {
		if p, err = s.passengers.FindByID(ctx, card.PassengerID); err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, domain.E(domain.CodeNotFound, "passenger not found")
}

// topup overwrites the wallet balance with the value the device reports;
// no payment record is written for recharges.
func (s *Service) topup(ctx context.Context, passenger *domain.Passenger, newBalance decimal.Decimal) (*ports.DeviceBalanceResult, error) {
	if err := s.walletSvc.SetBalance(ctx, passenger.ID, newBalance); err != nil {
		return nil, err
	}

	s.publish("wallet.topup", map[string]interface{}{
		"event_id":     uuid.NewString(),
		"passenger_id": passenger.ID,
		"new_balance":  newBalance.String(),
	})
	s.log.Info("wallet recharged",
		zap.Uint("passenger_id", passenger.ID),
		zap.String("new_balance", newBalance.String()),
	)
	return &ports.DeviceBalanceResult{Status: "recharged", NewBalance: newBalance}, nil
}

// devicePayment derives the fare from the balance delta the NFC device
// reports: the device already deducted the fare on the card, so the wallet
// write and the payment record follow the device's arithmetic.
func (s *Service) devicePayment(ctx context.Context, passenger *domain.Passenger, in ports.DeviceBalanceInput) (*ports.DeviceBalanceResult, error) {
	device, err := s.devices.FindByID(ctx, in.DeviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, domain.E(domain.CodeNotFound, "device not found")
	}

	driver, err := s.drivers.FindByDeviceID(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.E(domain.CodeNotFound, "device is not assigned to a driver")
	}

	trip, err := s.trips.ActiveByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.E(domain.CodeNotFound, "no active trip for the device's driver")
	}

	var payment *domain.Payment
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		pw, dw, err := s.lockFareWallets(ctx, passenger.ID, trip.DriverID)
		if err != nil {
			return err
		}

		fare := pw.Balance.Sub(in.NewBalance)
		payment = &domain.Payment{
			PassengerID: passenger.ID,
			TripID:      &trip.ID,
			Fare:        fare,
			NewBalance:  in.NewBalance,
			Timestamp:   s.now(),
			Method:      domain.PaymentMethodNFC,
		}
		if err := s.payments.Save(ctx, payment); err != nil {
			return err
		}
		if err := s.wallets.UpdatePassengerBalance(ctx, pw.ID, in.NewBalance); err != nil {
			return err
		}
		return s.wallets.UpdateDriverBalances(ctx, dw.ID, dw.Balance, dw.PendingBalance.Add(fare))
	})
	if err != nil {
		return nil, err
	}

	s.afterPayment(payment)
	return &ports.DeviceBalanceResult{Status: "paid", Fare: payment.Fare, NewBalance: payment.NewBalance}, nil
}

// DriverSpend debits a driver's spendable balance. Pending fares are not
// spendable until settled.
func (s *Service) DriverSpend(ctx context.Context, driverUID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.E(domain.CodeValidation, "amount must be positive")
	}

	driver, err := s.drivers.FindByUID(ctx, strings.TrimSpace(driverUID))
	if err != nil {
		return decimal.Zero, err
	}
	if driver == nil {
		return decimal.Zero, domain.E(domain.CodeNotFound, "driver not found")
	}

	var newBalance decimal.Decimal
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.wallets.DriverWalletForUpdate(ctx, driver.ID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.E(domain.CodeNotFound, "driver wallet not found")
		}
		if w.Balance.LessThan(amount) {
			return domain.E(domain.CodeInsufficientFunds, "insufficient funds")
		}
		newBalance = w.Balance.Sub(amount)
		return s.wallets.UpdateDriverBalances(ctx, w.ID, newBalance, w.PendingBalance)
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info("driver spend",
		zap.Uint("driver_id", driver.ID),
		zap.String("amount", amount.String()),
		zap.String("new_balance", newBalance.String()),
	)
	return newBalance, nil
}

func (s *Service) PaymentsByPassenger(ctx context.Context, passengerUID string) ([]domain.Payment, error) {
	passenger, err := s.passengers.FindByUID(ctx, strings.TrimSpace(passengerUID))
	if err != nil {
		return nil, err
	}
	if passenger == nil {
		return nil, domain.E(domain.CodeNotFound, "passenger not found")
	}
	return s.payments.ByPassenger(ctx, passenger.ID)
}

func (s *Service) PaymentsByTrip(ctx context.Context, tripID uint) (*ports.TripPayments, error) {
	count, err := s.payments.CountByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &ports.TripPayments{TotalCount: count, Payments: payments}, nil
}

// applyFare runs the fare's storage steps as one unit: sufficiency check
// against the locked wallet, payment record, passenger debit, driver
// pending credit.
func (s *Service) applyFare(ctx context.Context, passenger *domain.Passenger, tripID *uint, driverID uint, fare decimal.Decimal, method domain.PaymentMethod) (*domain.Payment, error) {
	if !fare.IsPositive() {
		return nil, domain.E(domain.CodeValidation, "fare must be positive")
	}

	var payment *domain.Payment
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		pw, dw, err := s.lockFareWallets(ctx, passenger.ID, driverID)
		if err != nil {
			return err
		}
		if pw.Balance.LessThan(fare) {
			return domain.E(domain.CodeInsufficientFunds, "insufficient funds")
		}

		newBalance := pw.Balance.Sub(fare)
		payment = &domain.Payment{
			PassengerID: passenger.ID,
			TripID:      tripID,
			Fare:        fare,
			NewBalance:  newBalance,
			Timestamp:   s.now(),
			Method:      method,
		}
		if err := s.payments.Save(ctx, payment); err != nil {
			return err
		}
		if err := s.wallets.UpdatePassengerBalance(ctx, pw.ID, newBalance); err != nil {
			return err
		}
		return s.wallets.UpdateDriverBalances(ctx, dw.ID, dw.Balance, dw.PendingBalance.Add(fare))
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// lockFareWallets acquires both wallet rows in the wallet locking order
// shared with the transfer path.
func (s *Service) lockFareWallets(ctx context.Context, passengerID, driverID uint) (*domain.PassengerWallet, *domain.DriverWallet, error) {
	var pw *domain.PassengerWallet
	var dw *domain.DriverWallet
	order := domain.WalletLockOrder(
		domain.ActorRef{Kind: domain.ActorKindPassenger, ID: passengerID},
		domain.ActorRef{Kind: domain.ActorKindDriver, ID: driverID},
	)
	for _, ref := range order {
		switch ref.Kind {
		case domain.ActorKindPassenger:
			w, err := s.wallets.PassengerWalletForUpdate(ctx, ref.ID)
			if err != nil {
				return nil, nil, err
			}
			if w == nil {
				return nil, nil, domain.E(domain.CodeNotFound, "passenger wallet not found")
			}
			pw = w
		case domain.ActorKindDriver:
			w, err := s.wallets.DriverWalletForUpdate(ctx, ref.ID)
			if err != nil {
				return nil, nil, err
			}
			if w == nil {
				return nil, nil, domain.E(domain.CodeNotFound, "driver wallet not found")
			}
			dw = w
		}
	}
	return pw, dw, nil
}

func (s *Service) afterPayment(p *domain.Payment) {
	telemetry.PaymentsTotal.WithLabelValues(string(p.Method)).Inc()
	fare, _ := p.Fare.Float64()
	telemetry.FareCollectedTotal.Add(fare)

	s.publish("payment.processed", map[string]interface{}{
		"event_id":     uuid.NewString(),
		"payment_id":   p.ID,
		"passenger_id": p.PassengerID,
		"trip_id":      p.TripID,
		"fare":         p.Fare.String(),
		"new_balance":  p.NewBalance.String(),
		"method":       p.Method,
		"timestamp":    p.Timestamp,
	})
	s.log.Info("payment processed",
		zap.Uint("payment_id", p.ID),
		zap.Uint("passenger_id", p.PassengerID),
		zap.String("fare", p.Fare.String()),
		zap.String("method", string(p.Method)),
	)
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
