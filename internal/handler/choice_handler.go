package handler

import (
	"github.com/ctu-developers/DSpace/internal/handler/middleware"
	"github.com/ctu-developers/DSpace/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ChoiceHandler struct {
	choiceService *service.ChoiceService
}

func NewChoiceHandler(choiceService *service.ChoiceService) *ChoiceHandler {
	return &ChoiceHandler{choiceService: choiceService}
}

// Matches suggests persons for a free-text name
// GET /choices/authoritypersons?query=&start=&limit=
func (h *ChoiceHandler) Matches(c *fiber.Ctx) error {
	choices, err := h.choiceService.Matches(
		c.UserContext(),
		middleware.PrincipalFrom(c),
		c.Query("query"),
		c.QueryInt("start", 0),
		c.QueryInt("limit", service.DefaultLimit),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(choices)
}

// Label returns the display name for a person uid
// GET /choices/authoritypersons/:uid/label
func (h *ChoiceHandler) Label(c *fiber.Ctx) error {
	label, err := h.choiceService.Label(c.UserContext(), middleware.PrincipalFrom(c), c.Params("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"authority": c.Params("uid"),
		"label":     label,
	})
}
