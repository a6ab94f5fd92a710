package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-online/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTransferService(store *memStore) *TransferService {
	return NewTransferService(store.Transfers(), store.Users(), store, disabledEmailSender(), testLogger())
}

// seedAccount создает счет с заданным балансом (и владельца, если его еще нет).
func seedAccount(t *testing.T, store *memStore, balance string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	user := &model.User{ID: uuid.New(), Username: "owner-" + uuid.NewString()[:8], Email: uuid.NewString()[:8] + "@bank.test"}
	require.NoError(t, store.Users().Create(ctx, user))

	account := &model.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   dec(t, balance),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Accounts().Create(ctx, account))
	return account.ID
}

func accountBalance(t *testing.T, store *memStore, id uuid.UUID) decimal.Decimal {
	t.Helper()
	account, err := store.Accounts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func transferReq(origin, target uuid.UUID, amount decimal.Decimal) model.TransferRequest {
	return model.TransferRequest{Origin: &origin, Target: &target, Amount: &amount}
}

func TestPerformTransfer(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	transfer, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.NoError(t, err)

	// Балансы изменены ровно на сумму перевода
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "60.00")), "баланс отправителя")
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "40.00")), "баланс получателя")

	// Создана ровно одна запись о переводе
	transfers, err := svc.GetTransfers(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, transfer.ID, transfers[0].ID)
	assert.Equal(t, x, transfers[0].Origin)
	assert.Equal(t, y, transfers[0].Target)
	assert.True(t, transfers[0].Amount.Equal(dec(t, "40.00")))
	assert.False(t, transfers[0].Date.IsZero())
}

func TestPerformTransferInsufficientFunds(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "30.00")
	y := seedAccount(t, store, "5.00")

	_, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "30.01")))
	require.ErrorIs(t, err, model.ErrInsufficientFunds)

	// Балансы не изменились, запись не создана
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "30.00")))
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "5.00")))
	transfers, err := svc.GetTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestPerformTransferExactBalance(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "25.00")
	y := seedAccount(t, store, "0.00")

	// Перевод всей суммы допустим: баланс остается неотрицательным
	_, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "25.00")))
	require.NoError(t, err)
	assert.True(t, accountBalance(t, store, x).IsZero())
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "25.00")))
}

func TestPerformTransferInvalidRequest(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")
	amount := dec(t, "10.00")

	tests := []struct {
		name    string
		req     model.TransferRequest
		wantErr error
	}{
		{"нет отправителя", model.TransferRequest{Target: &y, Amount: &amount}, model.ErrMissingAccountRef},
		{"нет получателя", model.TransferRequest{Origin: &x, Amount: &amount}, model.ErrMissingAccountRef},
		{"нет суммы", model.TransferRequest{Origin: &x, Target: &y}, model.ErrMissingAccountRef},
		{"нулевая сумма", transferReq(x, y, decimal.Zero), model.ErrNonPositiveAmount},
		{"отрицательная сумма", transferReq(x, y, dec(t, "-1.00")), model.ErrNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PerformTransfer(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			// Подвид всегда сопоставим и с общим видом ошибки
			require.ErrorIs(t, err, model.ErrInvalidTransfer)
		})
	}

	// Ни одна запись не создана, балансы не тронуты
	transfers, err := svc.GetTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, transfers)
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "100.00")))
}

func TestPerformTransferAccountNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")

	_, err := svc.PerformTransfer(ctx, transferReq(x, uuid.New(), dec(t, "10.00")))
	require.ErrorIs(t, err, model.ErrAccountNotFound)

	_, err = svc.PerformTransfer(ctx, transferReq(uuid.New(), x, dec(t, "10.00")))
	require.ErrorIs(t, err, model.ErrAccountNotFound)

	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "100.00")))
}

// failingCreateTx подменяет запись о переводе на отказ уже после того,
// как оба баланса записаны внутри транзакции.
type failingCreateTx struct {
	model.LedgerTx
}

func (t failingCreateTx) CreateTransfer(ctx context.Context, transfer *model.Transfer) error {
	return errStorageDown
}

var errStorageDown = errors.New("хранилище недоступно")

type failingCreateTxManager struct {
	inner model.TxManager
}

func (m failingCreateTxManager) WithinTransaction(ctx context.Context, fn func(tx model.LedgerTx) error) error {
	return m.inner.WithinTransaction(ctx, func(tx model.LedgerTx) error {
		return fn(failingCreateTx{tx})
	})
}

// Отказ записи о переводе после списания и зачисления откатывает
// транзакцию целиком: балансы возвращаются к исходным, записи нет.
func TestPerformTransferRollbackOnRecordFailure(t *testing.T) {
	store := newMemStore()
	svc := NewTransferService(
		store.Transfers(),
		store.Users(),
		failingCreateTxManager{inner: store},
		disabledEmailSender(),
		testLogger(),
	)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	_, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.ErrorIs(t, err, errStorageDown)

	// Балансы восстановлены, частичного эффекта не осталось
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "100.00")))
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "0.00")))

	transfers, err := store.Transfers().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestDeleteTransferRestoresBalances(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	transfer, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.NoError(t, err)

	// Удаление перевода возвращает оба счета к исходным балансам
	require.NoError(t, svc.DeleteTransfer(ctx, transfer.ID))
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "100.00")))
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "0.00")))

	transfers, err := svc.GetTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestDeleteTransferNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)

	err := svc.DeleteTransfer(context.Background(), uuid.New())
	require.ErrorIs(t, err, model.ErrTransferNotFound)
}

// Обратное списание не проверяет баланс получателя: если получатель уже
// потратил средства, удаление перевода уводит его счет в минус.
func TestDeleteTransferUncheckedReversal(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")
	z := seedAccount(t, store, "0.00")

	first, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.NoError(t, err)

	// Получатель переводит полученное дальше
	_, err = svc.PerformTransfer(ctx, transferReq(y, z, dec(t, "40.00")))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransfer(ctx, first.ID))
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "100.00")))
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "-40.00")), "счет получателя уходит в минус")
}

// Если один из счетов удален, перевод удалить нельзя: возврат средств
// обязан сопровождать удаление записи, частичного эффекта не остается.
func TestDeleteTransferMissingAccount(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	transfer, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.NoError(t, err)

	deleted, err := store.Accounts().DeleteByID(ctx, y)
	require.NoError(t, err)
	require.True(t, deleted)

	err = svc.DeleteTransfer(ctx, transfer.ID)
	require.ErrorIs(t, err, model.ErrAccountNotFound)

	// Запись осталась, баланс отправителя не изменился
	got, err := svc.GetTransferByID(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, got.ID)
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "60.00")))
}

// UpdateTransfer меняет только саму запись: балансы счетов не пересчитываются,
// даже если сумма изменилась. Дата и идентификатор записи сохраняются.
func TestUpdateTransferDoesNotTouchBalances(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	transfer, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "40.00")))
	require.NoError(t, err)
	originalDate := transfer.Date

	updated, err := svc.UpdateTransfer(ctx, transfer.ID, model.UpdateTransferRequest{
		Origin: y,
		Target: x,
		Amount: dec(t, "75.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, transfer.ID, updated.ID)
	assert.Equal(t, y, updated.Origin)
	assert.Equal(t, x, updated.Target)
	assert.True(t, updated.Amount.Equal(dec(t, "75.00")))
	assert.True(t, updated.Date.Equal(originalDate), "дата записи не переставляется")

	// Балансы остались как после исходного перевода
	assert.True(t, accountBalance(t, store, x).Equal(dec(t, "60.00")))
	assert.True(t, accountBalance(t, store, y).Equal(dec(t, "40.00")))
}

func TestUpdateTransferNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)

	_, err := svc.UpdateTransfer(context.Background(), uuid.New(), model.UpdateTransferRequest{})
	require.ErrorIs(t, err, model.ErrTransferNotFound)
}

func TestGetTransfersOrder(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)
	ctx := context.Background()

	x := seedAccount(t, store, "100.00")
	y := seedAccount(t, store, "0.00")

	first, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "10.00")))
	require.NoError(t, err)
	second, err := svc.PerformTransfer(ctx, transferReq(x, y, dec(t, "20.00")))
	require.NoError(t, err)

	transfers, err := svc.GetTransfers(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, first.ID, transfers[0].ID)
	assert.Equal(t, second.ID, transfers[1].ID)
}

func TestGetTransferByIDNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTransferService(store)

	_, err := svc.GetTransferByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, model.ErrTransferNotFound)
}
