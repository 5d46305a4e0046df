package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mousa8080/PTPay-Public-Transportation-Payments-system/internal/observability/telemetry"
)

type txKey struct{}

// TxManager runs functions inside a gorm transaction carried on the
// context. Nested WithinTx calls join the enclosing transaction instead of
// opening a new one.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	start := time.Now()
	defer func() {
		telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	}()
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction bound to the context when inside
// WithinTx, otherwise the root handle.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
