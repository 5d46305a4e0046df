package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type GeoRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGeoRepository(db *gorm.DB, log *zap.Logger) ports.GeoRepository {
	return &GeoRepository{
		db:  db,
		log: log,
	}
}

func (r *GeoRepository) SaveGovernorate(ctx context.Context, g *domain.Governorate) error {
	if err := dbFrom(ctx, r.db).Save(g).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *GeoRepository) ListGovernorates(ctx context.Context) ([]domain.Governorate, error) {
	var out []domain.Governorate
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GeoRepository) SaveCity(ctx context.Context, c *domain.City) error {
	if err := dbFrom(ctx, r.db).Save(c).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *GeoRepository) ListCities(ctx context.Context, governorateID *uint) ([]domain.City, error) {
	q := dbFrom(ctx, r.db).Order("name ASC")
	if governorateID != nil {
		q = q.Where("governorate_id = ?", *governorateID)
	}
	var out []domain.City
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
