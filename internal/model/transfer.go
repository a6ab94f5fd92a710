package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer — запись о выполненном переводе средств между двумя счетами.
// Хранит только идентификаторы счетов: жизненный цикл записи не зависит
// от жизненного цикла самих счетов.
type Transfer struct {
	ID     uuid.UUID       `json:"id" db:"id"`
	Origin uuid.UUID       `json:"origin" db:"origin_account_id"`
	Target uuid.UUID       `json:"target" db:"target_account_id"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Date   time.Time       `json:"date" db:"date"`
}

// TransferRequest — входные данные перевода. Поля объявлены указателями,
// чтобы отличать отсутствующее поле от нулевого значения.
type TransferRequest struct {
	Origin *uuid.UUID       `json:"origin" validate:"required"`
	Target *uuid.UUID       `json:"target" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// UpdateTransferRequest — замена полей существующей записи о переводе.
// Дата и идентификатор записи при обновлении не меняются.
type UpdateTransferRequest struct {
	Origin uuid.UUID       `json:"origin"`
	Target uuid.UUID       `json:"target"`
	Amount decimal.Decimal `json:"amount"`
}
