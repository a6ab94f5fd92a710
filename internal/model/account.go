package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateAccountRequest struct {
	OwnerID uuid.UUID       `json:"owner_id" validate:"required"`
	Balance decimal.Decimal `json:"balance"`
}

// UpdateAccountRequest — частичное обновление счета: баланс заменяется только
// если передана положительная сумма, владелец — только если передан owner_id.
type UpdateAccountRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	OwnerID *uuid.UUID       `json:"owner_id"`
}

// ChangeRequest — запрос на пополнение или снятие средств со счета.
type ChangeRequest struct {
	AccountID uuid.UUID       `json:"account_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// BalanceResult — результат прямой операции леджера. Applied=false означает,
// что операция была пропущена (баланс ушел бы в минус) и Balance не изменился.
type BalanceResult struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Applied   bool            `json:"applied"`
}
