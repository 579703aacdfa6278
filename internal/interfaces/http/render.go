package http

import (
	"embed"
	"errors"
	"io/fs"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
)

//go:embed views
var viewsFS embed.FS

const layout = "layouts/main"

// NewViews motor de plantillas del panel (embebidas en el binario).
func NewViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(nethttp.FS(sub), ".html")
}

type menuItem struct {
	Page   view.Page
	Title  string
	Active bool
}

type countItem struct {
	Label string
	N     int
}

type reportLink struct {
	Label string
	PDF   string
	CSV   string
}

type confirmData struct {
	Prompt string
	Kind   entity.Kind
	ID     entity.ID
}

type loginPage struct {
	Title string
	Email string
	Error string
}

type panelPage struct {
	Title           string
	UserLabel       string
	Page            view.Page
	Menu            []menuItem
	Notices         []view.Notice
	Alert           string
	Confirm         *confirmData
	Counts          []countItem
	Reports         []reportLink
	Table           *view.Table
	Kind            entity.Kind
	Editable        bool
	Editor          view.Editor
	EditorKind      string
	CategoryOptions []view.Option
}

var countLabels = map[entity.Kind]string{
	entity.KindProducts:   "Produtos",
	entity.KindClients:    "Clientes",
	entity.KindUsers:      "Usuários",
	entity.KindCategories: "Categorias",
}

func renderLogin(c *fiber.Ctx, ctrl *view.Controller, status int, email string) error {
	snap := ctrl.Snapshot()
	return c.Status(status).Render("login", loginPage{
		Title: view.PageLoggedOut.Title(),
		Email: email,
		Error: snap.LoginError,
	}, layout)
}

// renderPanel pinta la página actual del controlador. Sin sesión (p. ej. un 401
// del backend durante la acción) redirige al login.
func renderPanel(c *fiber.Ctx, ctrl *view.Controller, status int, confirm *confirmData, alert string) error {
	if !ctrl.LoggedIn() {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	snap := ctrl.Snapshot()
	data := panelPage{
		Title:      snap.Title,
		UserLabel:  snap.UserLabel(),
		Page:       snap.Page,
		Notices:    ctrl.Notices(),
		Alert:      alert,
		Confirm:    confirm,
		Editor:     snap.Editor,
		EditorKind: string(snap.Editor.Kind),
	}
	for _, p := range view.Pages {
		data.Menu = append(data.Menu, menuItem{Page: p, Title: p.Title(), Active: p == snap.Page})
	}

	switch snap.Page {
	case view.PageDashboard:
		for _, k := range entity.Kinds {
			data.Counts = append(data.Counts, countItem{Label: countLabels[k], N: snap.Counts[k]})
		}
	case view.PageReports:
		for _, k := range []entity.Kind{entity.KindProducts, entity.KindClients} {
			base := "/panel/reports/" + string(k)
			data.Reports = append(data.Reports, reportLink{
				Label: countLabels[k],
				PDF:   base + "." + string(report.FormatPDF),
				CSV:   base + "." + string(report.FormatCSV),
			})
		}
	}
	if kind, ok := snap.Page.LoadsKind(); ok {
		table, err := ctrl.Render(kind)
		if err != nil {
			return err
		}
		data.Table = &table
		data.Kind = kind
		data.Editable = kind.Editable()
	}
	if snap.Editor.Open() && snap.Editor.Kind == entity.KindProducts {
		data.CategoryOptions = ctrl.CategoryOptions()
	}
	return c.Status(status).Render("panel", data, layout)
}

// statusFor traduce la taxonomía de errores a un status HTTP.
func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, domain.ErrCancelled):
		return fiber.StatusOK
	case errors.Is(err, domain.ErrNotLoggedIn), errors.Is(err, domain.ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrUnknownPage),
		errors.Is(err, domain.ErrRecordNotLoaded), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrEditorOpen), errors.Is(err, domain.ErrEditorClosed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConnection), errors.Is(err, domain.ErrServer):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// backendFailure indica si el error vino de la API (el controlador ya dejó un aviso).
func backendFailure(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) || errors.Is(err, domain.ErrConnection) || errors.Is(err, domain.ErrServer)
}

// afterAction pinta el resultado de una acción del panel. Los fallos locales
// (registro no cargado, editor ya abierto...) se muestran como alerta.
func afterAction(c *fiber.Ctx, ctrl *view.Controller, err error) error {
	alert := ""
	if err != nil && !errors.Is(err, domain.ErrCancelled) && !backendFailure(err) {
		if ed := ctrl.Editor(); !ed.Open() || ed.Error == "" {
			alert = domain.UserMessage(err)
		}
	}
	return renderPanel(c, ctrl, statusFor(err), nil, alert)
}
