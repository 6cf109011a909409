package impact

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

//go:embed badges.yaml
var badgesYAML []byte

// LoadCatalog разбирает каталог значков из YAML
func LoadCatalog(data []byte) ([]models.Badge, error) {
	var badges []models.Badge
	if err := yaml.Unmarshal(data, &badges); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(badges))
	for _, badge := range badges {
		if badge.ID == "" {
			return nil, fmt.Errorf("badge without id")
		}
		if _, ok := seen[badge.ID]; ok {
			return nil, fmt.Errorf("duplicate badge %q", badge.ID)
		}
		seen[badge.ID] = struct{}{}

		switch badge.Category {
		case models.BadgeSwap, models.BadgeImpact, models.BadgeCommunity, models.BadgeSpecial:
		default:
			return nil, fmt.Errorf("badge %q: unknown category %q", badge.ID, badge.Category)
		}
	}
	return badges, nil
}

// DefaultCatalog встроенный каталог значков
func DefaultCatalog() []models.Badge {
	badges, err := LoadCatalog(badgesYAML)
	if err != nil {
		panic(err)
	}
	return badges
}

// Earned отбирает значки, условия которых выполнены
func Earned(catalog []models.Badge, stats models.ImpactStats) []models.Badge {
	earned := make([]models.Badge, 0, len(catalog))
	for _, badge := range catalog {
		if unlocked(badge, stats) {
			earned = append(earned, badge)
		}
	}
	return earned
}

func unlocked(badge models.Badge, stats models.ImpactStats) bool {
	switch badge.Category {
	case models.BadgeSwap:
		return float64(stats.SwapsCompleted) >= badge.Requirement
	case models.BadgeImpact:
		return stats.CO2Saved >= badge.Requirement
	case models.BadgeCommunity:
		return float64(stats.ItemsListed) >= badge.Requirement
	case models.BadgeSpecial:
		return true
	}
	return false
}
