package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type RouteRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRouteRepository(db *gorm.DB, log *zap.Logger) ports.RouteRepository {
	return &RouteRepository{
		db:  db,
		log: log,
	}
}

func (r *RouteRepository) Save(ctx context.Context, route *domain.Route) error {
	if err := dbFrom(ctx, r.db).Omit("Stops").Save(route).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *RouteRepository) FindByID(ctx context.Context, id uint) (*domain.Route, error) {
	var route domain.Route
	err := dbFrom(ctx, r.db).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stops.id ASC")
		}).
		First(&route, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) ListByCity(ctx context.Context, cityID uint) ([]domain.Route, error) {
	var routes []domain.Route
	err := dbFrom(ctx, r.db).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stops.id ASC")
		}).
		Where("city_id = ?", cityID).
		Find(&routes).Error
	if err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *RouteRepository) AddStop(ctx context.Context, s *domain.Stop) error {
	if err := dbFrom(ctx, r.db).Create(s).Error; err != nil {
		return translateError(err)
	}
	return nil
}
