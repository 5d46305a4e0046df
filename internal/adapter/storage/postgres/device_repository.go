package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type DeviceRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDeviceRepository(db *gorm.DB, log *zap.Logger) ports.DeviceRepository {
	return &DeviceRepository{
		db:  db,
		log: log,
	}
}

func (r *DeviceRepository) Save(ctx context.Context, d *domain.Device) error {
	if err := dbFrom(ctx, r.db).Save(d).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *DeviceRepository) FindByID(ctx context.Context, id uint) (*domain.Device, error) {
	var d domain.Device
	err := dbFrom(ctx, r.db).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepository) SaveLocation(ctx context.Context, l *domain.DeviceLocation) error {
	return dbFrom(ctx, r.db).Create(l).Error
}

func (r *DeviceRepository) LatestLocation(ctx context.Context, deviceID uint) (*domain.DeviceLocation, error) {
	var l domain.DeviceLocation
	err := dbFrom(ctx, r.db).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC").
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
