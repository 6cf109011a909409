package models

import "time"

// SwapStatus статус запроса на обмен
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
)

// Valid проверяет, что статус входит в перечисление
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected, SwapCompleted:
		return true
	}
	return false
}

// SwapRequest представляет запрос на обмен вещью
type SwapRequest struct {
	ID            string     `json:"id"`
	RequesterID   string     `json:"requester_id"`
	ReceiverID    string     `json:"receiver_id"`
	ItemID        string     `json:"item_id"`
	OfferedItemID *string    `json:"offered_item_id,omitempty"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Дополнительные поля для API
	Item        *Item     `json:"item,omitempty"`
	OfferedItem *Item     `json:"offered_item,omitempty"`
	Requester   *User     `json:"requester,omitempty"`
	Receiver    *User     `json:"receiver,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
}

// HasParticipant сообщает, является ли пользователь участником обмена
func (s *SwapRequest) HasParticipant(userID string) bool {
	return userID != "" && (s.RequesterID == userID || s.ReceiverID == userID)
}

// SwapList входящие и исходящие запросы пользователя
type SwapList struct {
	Sent     []SwapRequest `json:"sent"`
	Received []SwapRequest `json:"received"`
}
