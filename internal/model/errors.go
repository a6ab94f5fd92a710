package model

import (
	"errors"
	"fmt"
)

// Типизированные ошибки доменного слоя. Сервисы оборачивают их через
// fmt.Errorf("...: %w", ...), поэтому проверять нужно через errors.Is.
var (
	ErrUserNotFound     = errors.New("пользователь не найден")
	ErrAccountNotFound  = errors.New("счет не найден")
	ErrTransferNotFound = errors.New("перевод не найден")

	// ErrInsufficientFunds возвращается только из пути перевода между счетами.
	// Прямые операции леджера (пополнение/снятие) при нехватке средств
	// не возвращают ошибку, а пропускают запись (см. LedgerService.ApplyDelta).
	ErrInsufficientFunds = errors.New("недостаточно средств на счете")

	ErrInvalidTransfer = errors.New("некорректный запрос на перевод")

	// Подвиды ErrInvalidTransfer: errors.Is находит и подвид, и общий вид.
	ErrMissingAccountRef = fmt.Errorf("%w: не указан счет", ErrInvalidTransfer)
	ErrNonPositiveAmount = fmt.Errorf("%w: сумма должна быть больше нуля", ErrInvalidTransfer)
)
