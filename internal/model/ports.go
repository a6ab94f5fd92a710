package model

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Порты хранилища. Сервисы получают их через конструкторы и не знают
// о конкретной реализации (Postgres в internal/repository, in-memory в тестах).

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAll(ctx context.Context) ([]Account, error)
	GetAllByIDs(ctx context.Context, ids []uuid.UUID) ([]Account, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type TransferStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	GetAll(ctx context.Context) ([]Transfer, error)
	Update(ctx context.Context, transfer *Transfer) error
}

// LedgerTx — операции, доступные внутри одной транзакции хранилища.
// Чтение счета берет блокировку строки до конца транзакции.
type LedgerTx interface {
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	GetTransferForUpdate(ctx context.Context, id uuid.UUID) (*Transfer, error)
	CreateTransfer(ctx context.Context, transfer *Transfer) error
	DeleteTransfer(ctx context.Context, id uuid.UUID) error
}

// TxManager выполняет fn в границах одной атомарной транзакции:
// ошибка из fn откатывает все изменения, сделанные через LedgerTx.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(tx LedgerTx) error) error
}
