package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// ReportHandler descargas de la página de relatórios.
type ReportHandler struct {
	svc *report.Service
	log zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: log}
}

// Export recarga la colección y la descarga en PDF o CSV.
// GET /panel/reports/:kind.:format
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind, ok := entity.ParseKind(c.Params("kind"))
	if !ok || !report.Exportable(kind) {
		return fiber.NewError(fiber.StatusNotFound, "relatório desconhecido")
	}
	format, ok := report.ParseFormat(c.Params("format"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "formato desconhecido")
	}

	ctrl := GetController(c)
	out, err := h.svc.Export(c.UserContext(), ctrl, kind, format)
	if err != nil {
		h.log.Warn().Err(err).Str("kind", string(kind)).Str("format", string(format)).Msg("exportación fallida")
		return renderPanel(c, ctrl, statusFor(err), nil, "Não foi possível gerar o relatório.")
	}
	c.Attachment(out.Filename)
	c.Set(fiber.HeaderContentType, out.ContentType)
	return c.Send(out.Data)
}
