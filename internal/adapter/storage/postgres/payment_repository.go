package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type PaymentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPaymentRepository(db *gorm.DB, log *zap.Logger) ports.PaymentRepository {
	return &PaymentRepository{
		db:  db,
		log: log,
	}
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	if err := dbFrom(ctx, r.db).Create(p).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *PaymentRepository) ByPassenger(ctx context.Context, passengerID uint) ([]domain.Payment, error) {
	var out []domain.Payment
	err := dbFrom(ctx, r.db).
		Where("passenger_id = ?", passengerID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) ByTrip(ctx context.Context, tripID uint) ([]domain.Payment, error) {
	var out []domain.Payment
	err := dbFrom(ctx, r.db).
		Where("trip_id = ?", tripID).
		Order("timestamp ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) CountByTrip(ctx context.Context, tripID uint) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).
		Model(&domain.Payment{}).
		Where("trip_id = ?", tripID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
