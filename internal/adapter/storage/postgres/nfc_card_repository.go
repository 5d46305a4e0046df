package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type NFCCardRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNFCCardRepository(db *gorm.DB, log *zap.Logger) ports.NFCCardRepository {
	return &NFCCardRepository{
		db:  db,
		log: log,
	}
}

func (r *NFCCardRepository) Save(ctx context.Context, c *domain.NFCCard) error {
	if err := dbFrom(ctx, r.db).Create(c).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *NFCCardRepository) FindByUID(ctx context.Context, uid string) (*domain.NFCCard, error) {
	var c domain.NFCCard
	err := dbFrom(ctx, r.db).First(&c, "uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
