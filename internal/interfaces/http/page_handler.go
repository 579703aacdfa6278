package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain"
)

// PageHandler navegación entre las páginas del panel.
type PageHandler struct{}

// NewPageHandler construye el handler.
func NewPageHandler() *PageHandler { return &PageHandler{} }

// Show navega a la página y la pinta. Products, Clients y Settings cargan su
// colección; el resto no pide nada al backend.
// GET /panel/:page
func (h *PageHandler) Show(c *fiber.Ctx) error {
	page, ok := view.ParsePage(c.Params("page"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "página não encontrada")
	}
	ctrl := GetController(c)
	if err := ctrl.Navigate(c.UserContext(), page); err != nil {
		if errors.Is(err, domain.ErrNotLoggedIn) {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return err
	}
	return renderPanel(c, ctrl, fiber.StatusOK, nil, "")
}
