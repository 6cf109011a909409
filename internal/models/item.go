package models

import "time"

// ItemCondition состояние вещи
type ItemCondition string

const (
	ConditionNew     ItemCondition = "New"
	ConditionLikeNew ItemCondition = "Like New"
	ConditionGood    ItemCondition = "Good"
	ConditionFair    ItemCondition = "Fair"
	ConditionWorn    ItemCondition = "Worn"
)

// Conditions все допустимые состояния в порядке отображения
var Conditions = []ItemCondition{
	ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn,
}

// Valid проверяет, что состояние входит в перечисление
func (c ItemCondition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Item представляет вещь, выставленную на обмен
type Item struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Condition   ItemCondition `json:"condition"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Images      []string      `json:"images"`
	IsAvailable bool          `json:"is_available"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`

	// Дополнительные поля для API
	Owner *User `json:"owner,omitempty"`
}

// ItemFilter параметры выборки каталога
type ItemFilter struct {
	Category string
	// Подстрока для поиска по названию и описанию, без учета регистра
	Query string
	// Тег для точного сравнения, в нормализованной форме
	TagQuery string
	OwnerID  string
	// Только доступные вещи. Каталог выставляет флаг сам, если владелец не указан
	AvailableOnly bool
	Limit         int
}
