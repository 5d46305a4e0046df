package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type TripRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTripRepository(db *gorm.DB, log *zap.Logger) ports.TripRepository {
	return &TripRepository{
		db:  db,
		log: log,
	}
}

func (r *TripRepository) Create(ctx context.Context, t *domain.Trip) error {
	if err := dbFrom(ctx, r.db).Create(t).Error; err != nil {
		// The partial unique index on (vehicle_id) for open trips turns a
		// racing second start into a duplicate-key error here.
		return translateError(err)
	}
	return nil
}

func (r *TripRepository) FindByID(ctx context.Context, id uint) (*domain.Trip, error) {
	var t domain.Trip
	err := dbFrom(ctx, r.db).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) FindByQRToken(ctx context.Context, token string) (*domain.Trip, error) {
	var t domain.Trip
	err := dbFrom(ctx, r.db).First(&t, "qr_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) ActiveByDriver(ctx context.Context, driverID uint) (*domain.Trip, error) {
	var t domain.Trip
	err := dbFrom(ctx, r.db).
		Where("driver_id = ? AND end_time IS NULL", driverID).
		Order("start_time DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) ActiveByVehicle(ctx context.Context, vehicleID uint) (*domain.Trip, error) {
	var t domain.Trip
	err := dbFrom(ctx, r.db).
		Where("vehicle_id = ? AND end_time IS NULL", vehicleID).
		Order("start_time DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) MaxSequence(ctx context.Context, driverID uint, date time.Time) (int, error) {
	var max *int
	err := dbFrom(ctx, r.db).
		Model(&domain.Trip{}).
		Where("driver_id = ? AND date = ?", driverID, date.Format("2006-01-02")).
		Select("MAX(sequence_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *TripRepository) SetEnded(ctx context.Context, id uint, endTime time.Time, inZone bool) error {
	return dbFrom(ctx, r.db).
		Model(&domain.Trip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"end_time": endTime,
			"in_zone":  inZone,
		}).Error
}

func (r *TripRepository) UpdateQRToken(ctx context.Context, id uint, token string, generatedAt time.Time) error {
	return dbFrom(ctx, r.db).
		Model(&domain.Trip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"qr_token":              token,
			"qr_token_generated_at": generatedAt,
		}).Error
}
