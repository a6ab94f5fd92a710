package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

// LedgerService выполняет прямые операции над балансом одного счета.
//
// Политика при нехватке средств намеренно отличается от пути перевода:
// если применение дельты увело бы баланс в минус, запись пропускается
// без ошибки, а в результате возвращается неизмененный баланс с Applied=false.
// Перевод между счетами в той же ситуации возвращает ErrInsufficientFunds.
type LedgerService struct {
	txManager model.TxManager
	logger    *logrus.Logger
}

func NewLedgerService(txManager model.TxManager, logger *logrus.Logger) *LedgerService {
	return &LedgerService{
		txManager: txManager,
		logger:    logger,
	}
}

// ApplyDelta применяет знаковую дельту к балансу счета в одной транзакции.
// Счет блокируется на время операции, поэтому проверка и запись атомарны.
func (s *LedgerService) ApplyDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (*model.BalanceResult, error) {
	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"delta":      delta,
	}).Info("Применение дельты к балансу счета")

	result := &model.BalanceResult{AccountID: accountID}

	err := s.txManager.WithinTransaction(ctx, func(tx model.LedgerTx) error {
		account, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return fmt.Errorf("ошибка получения счета %s: %w", accountID, err)
		}

		candidate := account.Balance.Add(delta)
		if candidate.IsNegative() {
			// Недостаточно средств: операция пропускается, баланс не меняется
			s.logger.WithFields(logrus.Fields{
				"account_id": accountID,
				"balance":    account.Balance,
				"delta":      delta,
			}).Warn("Дельта не применена: баланс ушел бы в минус")
			result.Balance = account.Balance
			result.Applied = false
			return nil
		}

		if err := tx.SetAccountBalance(ctx, accountID, candidate); err != nil {
			return fmt.Errorf("ошибка записи баланса счета %s: %w", accountID, err)
		}

		result.Balance = candidate
		result.Applied = true
		return nil
	})

	if err != nil {
		return nil, err
	}

	if result.Applied {
		s.logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"balance":    result.Balance,
		}).Info("Баланс счета успешно обновлен")
	}

	return result, nil
}

// Deposit пополняет счет на указанную сумму.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*model.BalanceResult, error) {
	return s.ApplyDelta(ctx, accountID, amount)
}

// Withdraw снимает со счета указанную сумму.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*model.BalanceResult, error) {
	return s.ApplyDelta(ctx, accountID, amount.Neg())
}
