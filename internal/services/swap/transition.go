package swap

import "github.com/rajivgeraev/flippy-swaps/internal/models"

// allowedTransitions единственная таблица переходов статусов запроса на обмен
var allowedTransitions = map[models.SwapStatus][]models.SwapStatus{
	models.SwapPending:  {models.SwapAccepted, models.SwapRejected},
	models.SwapAccepted: {models.SwapCompleted},
}

// IsTargetStatus сообщает, можно ли запросить переход в статус
func IsTargetStatus(status models.SwapStatus) bool {
	switch status {
	case models.SwapAccepted, models.SwapRejected, models.SwapCompleted:
		return true
	}
	return false
}

// CanTransition проверяет переход from -> to по таблице
func CanTransition(from, to models.SwapStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
