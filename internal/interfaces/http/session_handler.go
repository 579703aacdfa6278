package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sg-panel/internal/application/dto"
)

// SessionHandler estado de la sesión del navegador en JSON.
type SessionHandler struct{}

// NewSessionHandler construye el handler.
func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

// Get godoc
// @Summary      Estado de la sesión del panel
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	snap := GetController(c).Snapshot()
	out := dto.SessionResponse{
		LoggedIn: snap.LoggedIn,
		Page:     string(snap.Page),
		Title:    snap.Title,
		Counts:   map[string]int{},
	}
	for k, n := range snap.Counts {
		out.Counts[string(k)] = n
	}
	if snap.LoggedIn {
		out.User = &dto.SessionUser{
			ID:       snap.User.ID.String(),
			Email:    snap.User.Email,
			FullName: snap.User.FullName,
			IsAdmin:  snap.User.IsAdmin,
		}
		if !snap.ExpiresAt.IsZero() {
			out.ExpiresAt = snap.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}
	if snap.Editor.Open() {
		out.Editor = &dto.EditorSummary{
			Kind:     string(snap.Editor.Kind),
			Mode:     snap.Editor.Mode.String(),
			RecordID: snap.Editor.RecordID.String(),
		}
	}
	return c.JSON(out)
}
