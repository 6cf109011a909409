package impact

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// ImpactService HTTP-обработчики показателей влияния
type ImpactService struct {
	accounting *Accounting
}

// NewImpactService создает новый экземпляр ImpactService
func NewImpactService(accounting *Accounting) *ImpactService {
	return &ImpactService{accounting: accounting}
}

// GetMyImpact возвращает показатели и значки текущего пользователя
func (s *ImpactService) GetMyImpact(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	stats, badges, err := s.accounting.Badges(ctx, middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"stats": stats, "badges": badges})
}

// GetCommunityImpact возвращает показатели сообщества
func (s *ImpactService) GetCommunityImpact(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	community, err := s.accounting.Community(ctx)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"community": community})
}

// GetBadgeCatalog возвращает все значки
func (s *ImpactService) GetBadgeCatalog(c fiber.Ctx) error {
	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"badges": s.accounting.Catalog()})
}
