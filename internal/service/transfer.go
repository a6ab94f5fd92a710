package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"banking-online/internal/model"
)

// TransferService координирует перевод средств между двумя счетами
// и ведение записей о переводах. Изменения балансов и запись о переводе
// всегда фиксируются одной транзакцией.
type TransferService struct {
	transferStore model.TransferStore
	userStore     model.UserStore
	txManager     model.TxManager
	emailSender   *EmailSender
	logger        *logrus.Logger
}

func NewTransferService(
	transferStore model.TransferStore,
	userStore model.UserStore,
	txManager model.TxManager,
	emailSender *EmailSender,
	logger *logrus.Logger,
) *TransferService {
	return &TransferService{
		transferStore: transferStore,
		userStore:     userStore,
		txManager:     txManager,
		emailSender:   emailSender,
		logger:        logger,
	}
}

// GetTransfers возвращает все записи о переводах в порядке их создания.
func (s *TransferService) GetTransfers(ctx context.Context) ([]model.Transfer, error) {
	s.logger.Info("Получение списка переводов")
	transfers, err := s.transferStore.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка при получении списка переводов")
		return nil, fmt.Errorf("ошибка получения переводов: %w", err)
	}
	return transfers, nil
}

// GetTransferByID возвращает запись о переводе по идентификатору.
func (s *TransferService) GetTransferByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	transfer, err := s.transferStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Перевод %s не найден", id)
		return nil, fmt.Errorf("ошибка получения перевода %s: %w", id, err)
	}
	return transfer, nil
}

// PerformTransfer выполняет перевод средств: списывает сумму со счета-отправителя,
// зачисляет на счет-получатель и создает запись о переводе. Все три эффекта
// фиксируются одной транзакцией; оба счета блокируются на время операции.
func (s *TransferService) PerformTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error) {
	if err := validateTransferRequest(req); err != nil {
		s.logger.WithError(err).Warn("Некорректный запрос на перевод")
		return nil, err
	}

	originID, targetID, amount := *req.Origin, *req.Target, *req.Amount

	s.logger.WithFields(logrus.Fields{
		"origin": originID,
		"target": targetID,
		"amount": amount,
	}).Info("Инициирован перевод средств")

	var (
		transfer    *model.Transfer
		originOwner uuid.UUID
	)

	err := s.txManager.WithinTransaction(ctx, func(tx model.LedgerTx) error {
		origin, target, err := lockAccountPair(ctx, tx, originID, targetID)
		if err != nil {
			return err
		}

		// Проверяем достаточность средств
		if origin.Balance.LessThan(amount) {
			s.logger.WithFields(logrus.Fields{
				"origin":  originID,
				"balance": origin.Balance,
				"amount":  amount,
			}).Warn("Недостаточно средств для перевода")
			return fmt.Errorf("счет %s: %w", originID, model.ErrInsufficientFunds)
		}

		// Списание и зачисление
		origin.Balance = origin.Balance.Sub(amount)
		target.Balance = target.Balance.Add(amount)

		if err := tx.SetAccountBalance(ctx, origin.ID, origin.Balance); err != nil {
			return fmt.Errorf("ошибка списания со счета %s: %w", origin.ID, err)
		}
		if err := tx.SetAccountBalance(ctx, target.ID, target.Balance); err != nil {
			return fmt.Errorf("ошибка зачисления на счет %s: %w", target.ID, err)
		}

		// Создаем запись о переводе
		transfer = &model.Transfer{
			ID:     uuid.New(),
			Origin: originID,
			Target: targetID,
			Amount: amount,
			Date:   time.Now(),
		}
		if err := tx.CreateTransfer(ctx, transfer); err != nil {
			return fmt.Errorf("ошибка записи перевода: %w", err)
		}

		originOwner = origin.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"transfer_id": transfer.ID,
		"origin":      originID,
		"target":      targetID,
		"amount":      amount,
	}).Info("Перевод успешно выполнен")

	// Уведомление владельцу счета-отправителя после фиксации перевода
	s.notifyOwner(ctx, originOwner, transfer)

	return transfer, nil
}

// DeleteTransfer удаляет запись о переводе и возвращает средства: сумма
// зачисляется обратно на счет-отправитель и списывается со счета-получателя.
// Обратное списание выполняется безусловно, без проверки достаточности
// средств на счете-получателе (зеркально прямому переводу); счет-получатель
// может уйти в минус — такие балансы находит AuditService.
func (s *TransferService) DeleteTransfer(ctx context.Context, id uuid.UUID) error {
	s.logger.WithField("transfer_id", id).Info("Удаление перевода с возвратом средств")

	err := s.txManager.WithinTransaction(ctx, func(tx model.LedgerTx) error {
		transfer, err := tx.GetTransferForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("ошибка получения перевода %s: %w", id, err)
		}

		// Если один из счетов уже удален, удаление перевода невозможно:
		// возврат средств обязан сопровождать удаление записи
		origin, target, err := lockAccountPair(ctx, tx, transfer.Origin, transfer.Target)
		if err != nil {
			return err
		}

		origin.Balance = origin.Balance.Add(transfer.Amount)
		target.Balance = target.Balance.Sub(transfer.Amount)

		if err := tx.SetAccountBalance(ctx, origin.ID, origin.Balance); err != nil {
			return fmt.Errorf("ошибка возврата средств на счет %s: %w", origin.ID, err)
		}
		if err := tx.SetAccountBalance(ctx, target.ID, target.Balance); err != nil {
			return fmt.Errorf("ошибка списания со счета %s: %w", target.ID, err)
		}

		if err := tx.DeleteTransfer(ctx, id); err != nil {
			return fmt.Errorf("ошибка удаления перевода %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("transfer_id", id).Info("Перевод удален, средства возвращены отправителю")
	return nil
}

// UpdateTransfer переписывает поля записи о переводе, сохраняя идентификатор
// и дату создания. Балансы счетов при этом НЕ изменяются — обновляется только
// сама запись. Это известная несогласованность с PerformTransfer/DeleteTransfer,
// сохраненная намеренно: отредактированная сумма не отражается в леджере.
func (s *TransferService) UpdateTransfer(ctx context.Context, id uuid.UUID, req model.UpdateTransferRequest) (*model.Transfer, error) {
	transfer, err := s.transferStore.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).Warnf("Перевод %s не найден", id)
		return nil, fmt.Errorf("ошибка получения перевода %s: %w", id, err)
	}

	transfer.Origin = req.Origin
	transfer.Target = req.Target
	transfer.Amount = req.Amount

	if err := s.transferStore.Update(ctx, transfer); err != nil {
		s.logger.WithError(err).Errorf("Ошибка обновления перевода %s", id)
		return nil, fmt.Errorf("ошибка обновления перевода %s: %w", id, err)
	}

	s.logger.WithField("transfer_id", id).Info("Запись о переводе обновлена")
	return transfer, nil
}

func validateTransferRequest(req model.TransferRequest) error {
	if req.Origin == nil || req.Target == nil || req.Amount == nil {
		return model.ErrMissingAccountRef
	}
	if !req.Amount.IsPositive() {
		return model.ErrNonPositiveAmount
	}
	return nil
}

// lockAccountPair блокирует оба счета в порядке возрастания идентификаторов,
// чтобы встречные переводы не могли взаимно заблокировать друг друга.
// При совпадении идентификаторов счет блокируется один раз и обе ссылки
// указывают на один объект.
func lockAccountPair(ctx context.Context, tx model.LedgerTx, originID, targetID uuid.UUID) (origin, target *model.Account, err error) {
	if originID == targetID {
		account, err := tx.GetAccountForUpdate(ctx, originID)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка получения счета %s: %w", originID, err)
		}
		return account, account, nil
	}

	firstID, secondID := originID, targetID
	if secondID.String() < firstID.String() {
		firstID, secondID = secondID, firstID
	}

	first, err := tx.GetAccountForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка получения счета %s: %w", firstID, err)
	}
	second, err := tx.GetAccountForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка получения счета %s: %w", secondID, err)
	}

	if first.ID == originID {
		return first, second, nil
	}
	return second, first, nil
}

// notifyOwner отправляет владельцу счета-отправителя email о переводе.
// Отправка асинхронная и не влияет на результат операции.
func (s *TransferService) notifyOwner(ctx context.Context, ownerID uuid.UUID, transfer *model.Transfer) {
	user, err := s.userStore.GetByID(ctx, ownerID)
	if err != nil || user.Email == "" {
		return
	}

	go func() {
		if err := s.emailSender.SendTransferNotification(
			user.Email,
			transfer.Amount,
			transfer.Origin.String(),
			transfer.Target.String(),
		); err != nil {
			s.logger.WithError(err).Warn("Не удалось отправить email уведомление")
		}
	}()
}
