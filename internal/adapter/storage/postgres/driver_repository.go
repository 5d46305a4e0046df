package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type DriverRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDriverRepository(db *gorm.DB, log *zap.Logger) ports.DriverRepository {
	return &DriverRepository{
		db:  db,
		log: log,
	}
}

func (r *DriverRepository) Save(ctx context.Context, d *domain.Driver) error {
	if err := dbFrom(ctx, r.db).Save(d).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *DriverRepository) FindByID(ctx context.Context, id uint) (*domain.Driver, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *DriverRepository) FindByUID(ctx context.Context, uid string) (*domain.Driver, error) {
	return r.findOne(ctx, "LOWER(uid) = LOWER(?)", uid)
}

func (r *DriverRepository) FindByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

func (r *DriverRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Driver, error) {
	return r.findOne(ctx, "national_id = ?", nationalID)
}

func (r *DriverRepository) FindByDeviceID(ctx context.Context, deviceID uint) (*domain.Driver, error) {
	return r.findOne(ctx, "assigned_device_id = ?", deviceID)
}

func (r *DriverRepository) UpdateInZone(ctx context.Context, id uint, inZone bool) error {
	return dbFrom(ctx, r.db).
		Model(&domain.Driver{}).
		Where("id = ?", id).
		Update("in_zone", inZone).Error
}

func (r *DriverRepository) AssignRoute(ctx context.Context, id uint, routeID uint) error {
	return dbFrom(ctx, r.db).
		Model(&domain.Driver{}).
		Where("id = ?", id).
		Update("assigned_route_id", routeID).Error
}

func (r *DriverRepository) AssignDevice(ctx context.Context, id uint, deviceID uint) error {
	err := dbFrom(ctx, r.db).
		Model(&domain.Driver{}).
		Where("id = ?", id).
		Update("assigned_device_id", deviceID).Error
	return translateError(err)
}

func (r *DriverRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Driver, error) {
	var d domain.Driver
	err := dbFrom(ctx, r.db).Where(query, args...).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
