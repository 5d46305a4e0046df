package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/domain"
	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/ports"
)

type TransferRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTransferRepository(db *gorm.DB, log *zap.Logger) ports.TransferRepository {
	return &TransferRepository{
		db:  db,
		log: log,
	}
}

func (r *TransferRepository) Save(ctx context.Context, t *domain.Transfer) error {
	if err := dbFrom(ctx, r.db).Create(t).Error; err != nil {
		return translateError(err)
	}
	return nil
}
