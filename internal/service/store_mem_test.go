package service

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"banking-online/internal/config"
	"banking-online/internal/model"
)

// memStore — in-memory реализация портов хранилища для тестов.
// WithinTransaction честно откатывает изменения при ошибке из fn:
// перед запуском делается снимок состояния, при ошибке он восстанавливается.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]model.User
	accounts      map[uuid.UUID]model.Account
	transfers     map[uuid.UUID]model.Transfer
	transferOrder []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]model.User),
		accounts:  make(map[uuid.UUID]model.Account),
		transfers: make(map[uuid.UUID]model.Transfer),
	}
}

func (s *memStore) Users() model.UserStore         { return &memUsers{s} }
func (s *memStore) Accounts() model.AccountStore   { return &memAccounts{s} }
func (s *memStore) Transfers() model.TransferStore { return &memTransfers{s} }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx model.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backupAccounts := make(map[uuid.UUID]model.Account, len(s.accounts))
	for k, v := range s.accounts {
		backupAccounts[k] = v
	}
	backupTransfers := make(map[uuid.UUID]model.Transfer, len(s.transfers))
	for k, v := range s.transfers {
		backupTransfers[k] = v
	}
	backupOrder := append([]uuid.UUID(nil), s.transferOrder...)

	if err := fn(&memTx{s}); err != nil {
		s.accounts = backupAccounts
		s.transfers = backupTransfers
		s.transferOrder = backupOrder
		return err
	}
	return nil
}

type memTx struct{ s *memStore }

func (t *memTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, ok := t.s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account, nil
}

func (t *memTx) SetAccountBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	account, ok := t.s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Balance = balance
	t.s.accounts[id] = account
	return nil
}

func (t *memTx) GetTransferForUpdate(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	transfer, ok := t.s.transfers[id]
	if !ok {
		return nil, model.ErrTransferNotFound
	}
	return &transfer, nil
}

func (t *memTx) CreateTransfer(ctx context.Context, transfer *model.Transfer) error {
	t.s.transfers[transfer.ID] = *transfer
	t.s.transferOrder = append(t.s.transferOrder, transfer.ID)
	return nil
}

func (t *memTx) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.s.transfers[id]; !ok {
		return model.ErrTransferNotFound
	}
	delete(t.s.transfers, id)
	for i, tid := range t.s.transferOrder {
		if tid == id {
			t.s.transferOrder = append(t.s.transferOrder[:i], t.s.transferOrder[i+1:]...)
			break
		}
	}
	return nil
}

type memUsers struct{ s *memStore }

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user, ok := m.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (m *memUsers) GetAll(ctx context.Context) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	users := make([]model.User, 0, len(m.s.users))
	for _, user := range m.s.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, user := range m.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (m *memUsers) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, user := range m.s.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.users[user.ID] = *user
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m *memUsers) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.users[id]
	return ok, nil
}

func (m *memUsers) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return false, nil
	}
	delete(m.s.users, id)
	return true, nil
}

type memAccounts struct{ s *memStore }

func (m *memAccounts) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	account, ok := m.s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account, nil
}

func (m *memAccounts) GetAll(ctx context.Context) ([]model.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	accounts := make([]model.Account, 0, len(m.s.accounts))
	for _, account := range m.s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (m *memAccounts) GetAllByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var accounts []model.Account
	for _, id := range ids {
		if account, ok := m.s.accounts[id]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (m *memAccounts) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var accounts []model.Account
	for _, account := range m.s.accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (m *memAccounts) Create(ctx context.Context, account *model.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.accounts[account.ID] = *account
	return nil
}

func (m *memAccounts) Update(ctx context.Context, account *model.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.accounts[account.ID]; !ok {
		return model.ErrAccountNotFound
	}
	m.s.accounts[account.ID] = *account
	return nil
}

func (m *memAccounts) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.accounts[id]
	return ok, nil
}

func (m *memAccounts) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.accounts[id]; !ok {
		return false, nil
	}
	delete(m.s.accounts, id)
	return true, nil
}

type memTransfers struct{ s *memStore }

func (m *memTransfers) GetByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	transfer, ok := m.s.transfers[id]
	if !ok {
		return nil, model.ErrTransferNotFound
	}
	return &transfer, nil
}

func (m *memTransfers) GetAll(ctx context.Context) ([]model.Transfer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	transfers := make([]model.Transfer, 0, len(m.s.transferOrder))
	for _, id := range m.s.transferOrder {
		if transfer, ok := m.s.transfers[id]; ok {
			transfers = append(transfers, transfer)
		}
	}
	return transfers, nil
}

func (m *memTransfers) Update(ctx context.Context, transfer *model.Transfer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.transfers[transfer.ID]; !ok {
		return model.ErrTransferNotFound
	}
	m.s.transfers[transfer.ID] = *transfer
	return nil
}

// testLogger возвращает логгер, не пишущий в вывод тестов.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// disabledEmailSender — отправитель с выключенной отправкой.
func disabledEmailSender() *EmailSender {
	return NewEmailSender(&config.Config{}, testLogger())
}
