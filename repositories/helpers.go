package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor абстрагирует *sql.DB и *sql.Tx, чтобы репозитории могли
// работать как внутри транзакции, так и вне её.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TransactionManager выполняет функцию внутри одной транзакции БД.
// Генерация сессий пишется по принципу «всё или ничего», поэтому сервисы
// зависят от этого интерфейса, а не от *sql.DB напрямую.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactionManager struct {
	db *sql.DB
}

func NewSQLTransactionManager(db *sql.DB) TransactionManager {
	return &sqlTransactionManager{db: db}
}

func (m *sqlTransactionManager) WithinTransaction(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
