package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"banking-online/internal/model"
)

// UserService — CRUD операции над пользователями и привязка счетов.
type UserService struct {
	userStore    model.UserStore
	accountStore model.AccountStore
	logger       *logrus.Logger
}

func NewUserService(
	userStore model.UserStore,
	accountStore model.AccountStore,
	logger *logrus.Logger,
) *UserService {
	return &UserService{
		userStore:    userStore,
		accountStore: accountStore,
		logger:       logger,
	}
}

func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при получении списка пользователей")
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Пользователь %s не найден", id)
		return nil, fmt.Errorf("ошибка получения пользователя %s: %w", id, err)
	}
	return user, nil
}

// GetUserAccounts возвращает счета, принадлежащие пользователю.
func (s *UserService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	accounts, err := s.accountStore.GetByUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка получения счетов пользователя %s", userID)
		return nil, fmt.Errorf("ошибка получения счетов пользователя %s: %w", userID, err)
	}
	return accounts, nil
}

// UpdateUser обновляет имя и пароль пользователя. Если передан список
// account_ids, перечисленные счета привязываются к пользователю.
// Пароль хранится только в виде bcrypt-хеша.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Пользователь %s не найден при обновлении", id)
		return nil, fmt.Errorf("ошибка получения пользователя %s: %w", id, err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}

	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.WithError(err).Error("Не удалось захешировать пароль")
			return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
		}
		user.Password = string(hashedPassword)
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		s.logger.WithError(err).Errorf("Ошибка обновления пользователя %s", id)
		return nil, fmt.Errorf("ошибка обновления пользователя %s: %w", id, err)
	}

	if req.AccountIDs != nil {
		if err := s.attachAccounts(ctx, id, req.AccountIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Infof("Пользователь %s обновлен", id)
	return user, nil
}

// attachAccounts привязывает перечисленные счета к пользователю.
func (s *UserService) attachAccounts(ctx context.Context, userID uuid.UUID, accountIDs []uuid.UUID) error {
	accounts, err := s.accountStore.GetAllByIDs(ctx, accountIDs)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения счетов для привязки")
		return fmt.Errorf("ошибка получения счетов: %w", err)
	}

	for i := range accounts {
		if accounts[i].UserID == userID {
			continue
		}
		accounts[i].UserID = userID
		if err := s.accountStore.Update(ctx, &accounts[i]); err != nil {
			s.logger.WithError(err).Errorf("Ошибка привязки счета %s", accounts[i].ID)
			return fmt.Errorf("ошибка привязки счета %s: %w", accounts[i].ID, err)
		}
	}

	return nil
}

// DeleteUser удаляет пользователя. Возвращает false без ошибки, если
// пользователя нет.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := s.userStore.ExistsByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка проверки существования пользователя %s", id)
		return false, fmt.Errorf("ошибка проверки пользователя %s: %w", id, err)
	}
	if !exists {
		s.logger.Warnf("Пользователь %s не найден при удалении", id)
		return false, nil
	}

	deleted, err := s.userStore.DeleteByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Errorf("Ошибка удаления пользователя %s", id)
		return false, fmt.Errorf("ошибка удаления пользователя %s: %w", id, err)
	}

	s.logger.Infof("Пользователь %s удален", id)
	return deleted, nil
}

// AddAccountToUser создает новый счет и привязывает его к пользователю.
func (s *UserService) AddAccountToUser(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*model.Account, error) {
	if balance.IsNegative() {
		s.logger.Warn("Попытка создания счета с отрицательным балансом")
		return nil, fmt.Errorf("начальный баланс не может быть отрицательным")
	}

	if _, err := s.userStore.GetByID(ctx, userID); err != nil {
		s.logger.WithError(err).Warnf("Пользователь %s не найден при добавлении счета", userID)
		return nil, fmt.Errorf("ошибка получения пользователя %s: %w", userID, err)
	}

	now := time.Now()
	account := &model.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accountStore.Create(ctx, account); err != nil {
		s.logger.WithError(err).Error("Ошибка при создании счета для пользователя")
		return nil, fmt.Errorf("ошибка создания счета: %w", err)
	}

	s.logger.Infof("Счет %s привязан к пользователю %s", account.ID, userID)
	return account, nil
}
