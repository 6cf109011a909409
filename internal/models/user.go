package models

import "time"

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`
	TelegramID   *int64    `json:"telegram_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	ImpactPoints int       `json:"impact_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity данные вызывающего пользователя, полученные из токена
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Picture   string `json:"picture,omitempty"`
}
