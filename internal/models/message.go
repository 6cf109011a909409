package models

import "time"

// Message представляет сообщение в переписке по обмену
type Message struct {
	ID            string    `json:"id"`
	SwapRequestID string    `json:"swap_request_id"`
	SenderID      string    `json:"sender_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`

	// Дополнительные поля для API
	Sender *User `json:"sender,omitempty"`
}
