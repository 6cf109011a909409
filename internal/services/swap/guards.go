package swap

import (
	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

// assertParticipant пропускает только инициатора и получателя
func assertParticipant(swap *models.SwapRequest, userID string) error {
	if !swap.HasParticipant(userID) {
		return apperrors.Forbidden("У вас нет доступа к этому запросу на обмен")
	}
	return nil
}

// assertReceiver пропускает только получателя, статус меняет только он
func assertReceiver(swap *models.SwapRequest, userID string) error {
	if userID == "" || swap.ReceiverID != userID {
		return apperrors.Forbidden("Вы не можете изменить статус этого запроса на обмен")
	}
	return nil
}
