package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type VehicleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewVehicleRepository(db *gorm.DB, log *zap.Logger) ports.VehicleRepository {
	return &VehicleRepository{
		db:  db,
		log: log,
	}
}

func (r *VehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	if err := dbFrom(ctx, r.db).Save(v).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *VehicleRepository) FindByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := dbFrom(ctx, r.db).First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) FindByDriver(ctx context.Context, driverID uint) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	err := dbFrom(ctx, r.db).
		Where("driver_id = ?", driverID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
