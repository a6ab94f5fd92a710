package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

// AccountService — CRUD операции над счетами. Балансы через этот сервис
// не мутируются: прямые операции идут через LedgerService, переводы —
// через TransferService.
type AccountService struct {
	userStore    model.UserStore
	accountStore model.AccountStore
	logger       *logrus.Logger
}

func NewAccountService(
	userStore model.UserStore,
	accountStore model.AccountStore,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		userStore:    userStore,
		accountStore: accountStore,
		logger:       logger,
	}
}

// CreateAccount создает новый счет с начальным балансом для указанного владельца.
func (s *AccountService) CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	if req.Balance.IsNegative() {
		s.logger.Warn("Попытка создания счета с отрицательным балансом")
		return nil, fmt.Errorf("начальный баланс не может быть отрицательным")
	}

	// Владелец должен существовать
	if _, err := s.userStore.GetByID(ctx, req.OwnerID); err != nil {
		s.logger.WithError(err).Warnf("Владелец %s не найден при создании счета", req.OwnerID)
		return nil, fmt.Errorf("ошибка получения владельца %s: %w", req.OwnerID, err)
	}

	now := time.Now()
	account := &model.Account{
		ID:        uuid.New(),
		UserID:    req.OwnerID,
		Balance:   req.Balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accountStore.Create(ctx, account); err != nil {
		s.logger.WithError(err).Error("Ошибка при создании счета")
		return nil, fmt.Errorf("ошибка создания счета: %w", err)
	}

	s.logger.Infof("Создан счет %s для пользователя %s", account.ID, req.OwnerID)
	return account, nil
}

func (s *AccountService) GetAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.accountStore.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при получении списка счетов")
		return nil, fmt.Errorf("ошибка получения счетов: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accountStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Счет %s не найден", id)
		return nil, fmt.Errorf("ошибка получения счета %s: %w", id, err)
	}
	return account, nil
}

// UpdateAccount обновляет счет: баланс заменяется только при положительной
// переданной сумме, владелец — только при переданном owner_id.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, req model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accountStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Счет %s не найден при обновлении", id)
		return nil, fmt.Errorf("ошибка получения счета %s: %w", id, err)
	}

	if req.Amount != nil && req.Amount.IsPositive() {
		account.Balance = *req.Amount
	}

	if req.OwnerID != nil {
		if _, err := s.userStore.GetByID(ctx, *req.OwnerID); err != nil {
			s.logger.WithError(err).Warnf("Новый владелец %s не найден", *req.OwnerID)
			return nil, fmt.Errorf("ошибка получения владельца %s: %w", *req.OwnerID, err)
		}
		account.UserID = *req.OwnerID
	}

	if err := s.accountStore.Update(ctx, account); err != nil {
		s.logger.WithError(err).Errorf("Ошибка обновления счета %s", id)
		return nil, fmt.Errorf("ошибка обновления счета %s: %w", id, err)
	}

	s.logger.Infof("Счет %s обновлен", id)
	return account, nil
}

// DeleteAccount удаляет счет. Возвращает false без ошибки, если счета нет:
// «удалять нечего» — не ошибка, в отличие от невозможной операции.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := s.accountStore.ExistsByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка проверки существования счета %s", id)
		return false, fmt.Errorf("ошибка проверки счета %s: %w", id, err)
	}
	if !exists {
		s.logger.Warnf("Счет %s не найден при удалении", id)
		return false, nil
	}

	deleted, err := s.accountStore.DeleteByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка удаления счета %s", id)
		return false, fmt.Errorf("ошибка удаления счета %s: %w", id, err)
	}

	s.logger.Infof("Счет %s удален", id)
	return deleted, nil
}
