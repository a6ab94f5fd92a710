package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

// AuditService — периодическая проверка целостности леджера.
// Две известные дыры, которые она закрывает наблюдением:
//   - обратное списание при удалении перевода не проверяет баланс
//     получателя, поэтому счет может уйти в минус;
//   - запись о переводе переживает удаление счета, поэтому в записях
//     могут остаться ссылки на несуществующие счета.
type AuditService struct {
	accountStore  model.AccountStore
	transferStore model.TransferStore
	logger        *logrus.Logger
}

// AuditReport — итог одной проверки.
type AuditReport struct {
	NegativeBalances []uuid.UUID `json:"negative_balances"`
	DanglingRefs     []uuid.UUID `json:"dangling_refs"`
}

func NewAuditService(
	accountStore model.AccountStore,
	transferStore model.TransferStore,
	logger *logrus.Logger,
) *AuditService {
	return &AuditService{
		accountStore:  accountStore,
		transferStore: transferStore,
		logger:        logger,
	}
}

// Run выполняет одну проверку: ищет счета с отрицательным балансом
// и записи о переводах со ссылками на несуществующие счета.
func (s *AuditService) Run(ctx context.Context) (*AuditReport, error) {
	s.logger.Info("Запуск проверки целостности леджера")

	accounts, err := s.accountStore.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения счетов для проверки")
		return nil, fmt.Errorf("ошибка получения счетов: %w", err)
	}

	report := &AuditReport{}
	known := make(map[uuid.UUID]struct{}, len(accounts))
	for _, account := range accounts {
		known[account.ID] = struct{}{}
		if account.Balance.IsNegative() {
			s.logger.WithFields(logrus.Fields{
				"account_id": account.ID,
				"balance":    account.Balance,
			}).Warn("Обнаружен счет с отрицательным балансом")
			report.NegativeBalances = append(report.NegativeBalances, account.ID)
		}
	}

	transfers, err := s.transferStore.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения переводов для проверки")
		return nil, fmt.Errorf("ошибка получения переводов: %w", err)
	}

	for _, transfer := range transfers {
		_, originOK := known[transfer.Origin]
		_, targetOK := known[transfer.Target]
		if !originOK || !targetOK {
			s.logger.WithFields(logrus.Fields{
				"transfer_id": transfer.ID,
				"origin":      transfer.Origin,
				"target":      transfer.Target,
			}).Warn("Перевод ссылается на несуществующий счет")
			report.DanglingRefs = append(report.DanglingRefs, transfer.ID)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"negative_balances": len(report.NegativeBalances),
		"dangling_refs":     len(report.DanglingRefs),
	}).Info("Проверка целостности леджера завершена")

	return report, nil
}
