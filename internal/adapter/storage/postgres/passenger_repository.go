package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type PassengerRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPassengerRepository(db *gorm.DB, log *zap.Logger) ports.PassengerRepository {
	return &PassengerRepository{
		db:  db,
		log: log,
	}
}

func (r *PassengerRepository) Save(ctx context.Context, p *domain.Passenger) error {
	if err := dbFrom(ctx, r.db).Save(p).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *PassengerRepository) FindByID(ctx context.Context, id uint) (*domain.Passenger, error) {
	var p domain.Passenger
	err := dbFrom(ctx, r.db).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PassengerRepository) FindByUID(ctx context.Context, uid string) (*domain.Passenger, error) {
	var p domain.Passenger
	err := dbFrom(ctx, r.db).First(&p, "LOWER(uid) = LOWER(?)", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PassengerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Passenger, error) {
	var p domain.Passenger
	err := dbFrom(ctx, r.db).First(&p, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PassengerRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Passenger, error) {
	var p domain.Passenger
	err := dbFrom(ctx, r.db).First(&p, "national_id = ?", nationalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
