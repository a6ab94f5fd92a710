package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

// TxManager выполняет переданную функцию в одной транзакции Postgres.
// Ошибка из fn откатывает транзакцию целиком.
type TxManager struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewTxManager(db *sql.DB, logger *logrus.Logger) *TxManager {
	return &TxManager{db: db, logger: logger}
}

func (m *TxManager) WithinTransaction(ctx context.Context, fn func(tx model.LedgerTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.logger.WithError(err).Error("Ошибка начала транзакции")
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		m.logger.WithError(err).Error("Ошибка подтверждения транзакции")
		return fmt.Errorf("ошибка подтверждения транзакции: %w", err)
	}

	return nil
}

// ledgerTx — операции над счетами и переводами внутри открытой транзакции.
type ledgerTx struct {
	tx *sql.Tx
}

// GetAccountForUpdate читает счет с блокировкой строки до конца транзакции.
func (t *ledgerTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `
        SELECT id, user_id, balance, created_at, updated_at
        FROM accounts
        WHERE id = $1
        FOR UPDATE
    `

	var account model.Account
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (t *ledgerTx) SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
        UPDATE accounts
        SET balance = $1,
            updated_at = NOW()
        WHERE id = $2
    `

	result, err := t.tx.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

func (t *ledgerTx) GetTransferForUpdate(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	query := `
        SELECT id, origin_account_id, target_account_id, amount, date
        FROM transfers
        WHERE id = $1
        FOR UPDATE
    `

	var transfer model.Transfer
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&transfer.ID,
		&transfer.Origin,
		&transfer.Target,
		&transfer.Amount,
		&transfer.Date,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (t *ledgerTx) CreateTransfer(ctx context.Context, transfer *model.Transfer) error {
	query := `
        INSERT INTO transfers (id, origin_account_id, target_account_id, amount, date)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := t.tx.ExecContext(
		ctx,
		query,
		transfer.ID,
		transfer.Origin,
		transfer.Target,
		transfer.Amount,
		transfer.Date,
	)

	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (t *ledgerTx) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transfers WHERE id = $1`

	result, err := t.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrTransferNotFound
	}

	return nil
}
