package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

// RecordHandler alta, edición y borrado de registros desde las tablas del panel.
type RecordHandler struct{}

// NewRecordHandler construye el handler.
func NewRecordHandler() *RecordHandler { return &RecordHandler{} }

func editableKind(c *fiber.Ctx) (entity.Kind, error) {
	kind, ok := entity.ParseKind(c.Params("kind"))
	if !ok || !kind.Editable() {
		return "", fiber.NewError(fiber.StatusNotFound, "recurso desconhecido")
	}
	return kind, nil
}

// New abre el editor vacío.
// GET /panel/:kind/new
func (h *RecordHandler) New(c *fiber.Ctx) error {
	kind, err := editableKind(c)
	if err != nil {
		return err
	}
	ctrl := GetController(c)
	return afterAction(c, ctrl, ctrl.OpenEditor(kind, ""))
}

// Rows punto de entrada de los botones de fila (action=edit|delete, id).
// Un delete no se ejecuta aquí: se muestra la confirmación y el borrado llega
// por POST /panel/:kind/:id/delete.
// POST /panel/:kind/rows
func (h *RecordHandler) Rows(c *fiber.Ctx) error {
	kind, err := editableKind(c)
	if err != nil {
		return err
	}
	ctrl := GetController(c)
	id := entity.ID(c.FormValue("id"))

	var prompt string
	ask := func(p string) bool {
		prompt = p
		return false
	}
	err = ctrl.RowAction(c.UserContext(), kind, c.FormValue("action"), id, ask)
	if prompt != "" {
		return renderPanel(c, ctrl, fiber.StatusOK, &confirmData{Prompt: prompt, Kind: kind, ID: id}, "")
	}
	return afterAction(c, ctrl, err)
}

// Delete borra el registro si el formulario trae confirm=yes.
// POST /panel/:kind/:id/delete
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	kind, err := editableKind(c)
	if err != nil {
		return err
	}
	// El modal escapa el id en la URL; el gateway lo vuelve a escapar al llamar al backend.
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id inválido")
	}
	ctrl := GetController(c)
	confirmed := c.FormValue("confirm") == "yes"
	err = ctrl.DeleteRecord(c.UserContext(), kind, entity.ID(id), func(string) bool { return confirmed })
	return afterAction(c, ctrl, err)
}

// Submit envía el editor abierto con los campos del formulario.
// POST /panel/:kind/editor
func (h *RecordHandler) Submit(c *fiber.Ctx) error {
	kind, err := editableKind(c)
	if err != nil {
		return err
	}
	values := view.FormValues{}
	for _, f := range view.Fields(kind) {
		values[f] = c.FormValue(f)
	}
	ctrl := GetController(c)
	return afterAction(c, ctrl, ctrl.SubmitEditor(c.UserContext(), kind, values))
}

// Close cierra el editor sin enviar.
// POST /panel/:kind/editor/close
func (h *RecordHandler) Close(c *fiber.Ctx) error {
	if _, err := editableKind(c); err != nil {
		return err
	}
	ctrl := GetController(c)
	ctrl.CloseEditor()
	return afterAction(c, ctrl, nil)
}

