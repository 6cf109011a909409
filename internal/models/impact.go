package models

// ImpactStats показатели пользователя для страницы влияния
type ImpactStats struct {
	UserID         string  `json:"user_id"`
	SwapsCompleted int     `json:"swaps_completed"`
	ItemsListed    int     `json:"items_listed"`
	CO2Saved       float64 `json:"co2_saved"`
	ImpactPoints   int     `json:"impact_points"`
}

// CommunityStats суммарные показатели сообщества
type CommunityStats struct {
	TotalUsers     int     `json:"total_users"`
	TotalItems     int     `json:"total_items"`
	SwapsCompleted int     `json:"swaps_completed"`
	CO2Saved       float64 `json:"co2_saved"`
}

// BadgeCategory группа значков
type BadgeCategory string

const (
	BadgeSwap      BadgeCategory = "swap"
	BadgeImpact    BadgeCategory = "impact"
	BadgeCommunity BadgeCategory = "community"
	BadgeSpecial   BadgeCategory = "special"
)

// Badge значок достижения
type Badge struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description" yaml:"description"`
	Icon            string        `json:"icon" yaml:"icon"`
	Category        BadgeCategory `json:"category" yaml:"category"`
	Level           string        `json:"level" yaml:"level"`
	Requirement     float64       `json:"requirement" yaml:"requirement"`
	BackgroundColor string        `json:"background_color" yaml:"background_color"`
}
