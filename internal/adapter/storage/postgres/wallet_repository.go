package postgres

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type WalletRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewWalletRepository(db *gorm.DB, log *zap.Logger) ports.WalletRepository {
	return &WalletRepository{
		db:  db,
		log: log,
	}
}

func (r *WalletRepository) CreatePassengerWallet(ctx context.Context, w *domain.PassengerWallet) error {
	if err := dbFrom(ctx, r.db).Create(w).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *WalletRepository) CreateDriverWallet(ctx context.Context, w *domain.DriverWallet) error {
	if err := dbFrom(ctx, r.db).Create(w).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *WalletRepository) PassengerWallet(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	var w domain.PassengerWallet
	err := dbFrom(ctx, r.db).First(&w, "passenger_id = ?", passengerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) DriverWallet(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	var w domain.DriverWallet
	err := dbFrom(ctx, r.db).First(&w, "driver_id = ?", driverID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// PassengerWalletForUpdate locks the wallet row until the enclosing
// transaction commits.
func (r *WalletRepository) PassengerWalletForUpdate(ctx context.Context, passengerID uint) (*domain.PassengerWallet, error) {
	var w domain.PassengerWallet
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, "passenger_id = ?", passengerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) DriverWalletForUpdate(ctx context.Context, driverID uint) (*domain.DriverWallet, error) {
	var w domain.DriverWallet
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, "driver_id = ?", driverID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) UpdatePassengerBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error {
	return dbFrom(ctx, r.db).
		Model(&domain.PassengerWallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}

func (r *WalletRepository) UpdateDriverBalances(ctx context.Context, walletID uint, balance, pending decimal.Decimal) error {
	return dbFrom(ctx, r.db).
		Model(&domain.DriverWallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"balance":         balance,
			"pending_balance": pending,
		}).Error
}
