package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

type TransferRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewTransferRepository(db *sql.DB, logger *logrus.Logger) *TransferRepository {
	return &TransferRepository{db: db, logger: logger}
}

func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	query := `
        SELECT id, origin_account_id, target_account_id, amount, date
        FROM transfers
        WHERE id = $1
    `

	var transfer model.Transfer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
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

func (r *TransferRepository) GetAll(ctx context.Context) ([]model.Transfer, error) {
	query := `
		SELECT id, origin_account_id, target_account_id, amount, date
		FROM transfers
		ORDER BY date, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		var transfer model.Transfer
		if err := rows.Scan(
			&transfer.ID,
			&transfer.Origin,
			&transfer.Target,
			&transfer.Amount,
			&transfer.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transfers: %w", err)
	}

	return transfers, nil
}

// Update переписывает поля записи о переводе. Дата записи не меняется.
func (r *TransferRepository) Update(ctx context.Context, transfer *model.Transfer) error {
	query := `
		UPDATE transfers
		SET origin_account_id = $1,
		    target_account_id = $2,
		    amount = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, transfer.Origin, transfer.Target, transfer.Amount, transfer.ID)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
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
