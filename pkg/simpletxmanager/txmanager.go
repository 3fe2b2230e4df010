// Package simpletxmanager менеджер сериализуемых транзакций для чистого *sql.DB
// (вариант без метрик; логика ретраев совпадает с pkg/txmanager)
package simpletxmanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/txmanager"
)

const (
	maxRetries     = 3
	retryBaseDelay = 20 * time.Millisecond
)

// TransactionManager выполняет функции в сериализуемых транзакциях над *sql.DB
type TransactionManager struct {
	db *sql.DB
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// DoSerializable выполняет fn в транзакции уровня SERIALIZABLE с ретраями
// конфликтов сериализации
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}

		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !txmanager.IsSerializationError(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %v", txmanager.ErrRetriesExhausted, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("%w: %v", txmanager.ErrTxBegin, err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		if txmanager.IsSerializationError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", txmanager.ErrTxCommit, err)
	}

	return nil
}
