package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/sg-panel/internal/infrastructure/pdf"
	"github.com/jhoicas/sg-panel/internal/infrastructure/sgapi"
	apphttp "github.com/jhoicas/sg-panel/internal/interfaces/http"
	"github.com/jhoicas/sg-panel/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCookie = "sg_session"

// browser app Fiber del panel contra un backend en memoria, con la cookie de
// sesión guardada entre peticiones como haría el navegador.
type browser struct {
	t       *testing.T
	app     *fiber.App
	backend *testutil.Backend
	cookie  string
}

func newBrowser(t *testing.T) *browser {
	t.Helper()
	backend := testutil.NewBackend(t)
	registry := apphttp.NewRegistry(time.Hour, func() *view.Controller {
		return view.New(view.Deps{
			NewAPI: func(tokens view.TokenSource) view.API {
				return sgapi.New(sgapi.Config{BaseURL: backend.URL(), Timeout: 2 * time.Second, Logger: zerolog.Nop()}, tokens)
			},
			Logger: zerolog.Nop(),
		})
	})
	app := fiber.New(fiber.Config{
		Views:        apphttp.NewViews(),
		ErrorHandler: apphttp.ErrorHandler(zerolog.Nop()),
	})
	apphttp.Router(app, apphttp.RouterDeps{
		Registry:   registry,
		Reports:    report.NewService(infrapdf.NewMarotoPDFGenerator(), csvexport.New()),
		CookieName: testCookie,
		SessionTTL: time.Hour,
		Logger:     zerolog.Nop(),
	})
	return &browser{t: t, app: app, backend: backend}
}

// do lanza la petición; form != nil se envía como formulario.
func (b *browser) do(method, path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: b.cookie})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookie {
			b.cookie = ck.Value
		}
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(raw)
}

func (b *browser) login() {
	b.t.Helper()
	resp, _ := b.do(http.MethodPost, "/login", url.Values{"email": {testutil.AdminEmail}, "password": {testutil.AdminPassword}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/panel/dashboard", resp.Header.Get("Location"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Login / logout
// ──────────────────────────────────────────────────────────────────────────────

func TestLoginForm_AbreSesionConCookie(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.do(http.MethodGet, "/login", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, b.cookie, "la primera visita recibe cookie de sesión")
	assert.Contains(t, body, `action="/login"`)
}

func TestPanel_SinLoginRedirige(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.do(http.MethodGet, "/panel/products", nil)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, b.backend.Count(http.MethodGet, "/api/products"))
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.do(http.MethodPost, "/login", url.Values{"email": {testutil.AdminEmail}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Falha no login: invalid credentials")
	assert.Contains(t, body, `value="admin@sg.com"`, "el email se conserva en el formulario")
}

func TestLogin_DashboardConConteos(t *testing.T) {
	b := newBrowser(t)
	b.login()

	resp, body := b.do(http.MethodGet, "/panel/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Admin S&amp;G")
	assert.Contains(t, body, "Categorias: 2")

	resp, _ = b.do(http.MethodGet, "/", nil)
	assert.Equal(t, "/panel/dashboard", resp.Header.Get("Location"))
}

func TestLogin_RotaElIDDeSesion(t *testing.T) {
	b := newBrowser(t)
	b.do(http.MethodGet, "/login", nil)
	before := b.cookie
	require.NotEmpty(t, before)

	b.login()
	assert.NotEmpty(t, b.cookie)
	assert.NotEqual(t, before, b.cookie)

	resp, _ := b.do(http.MethodGet, "/panel/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b.cookie = before
	resp, _ = b.do(http.MethodGet, "/panel/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "la cookie previa al login no da acceso")
}

func TestLogout_VuelveAlLogin(t *testing.T) {
	b := newBrowser(t)
	b.login()
	b.backend.On(http.MethodPost, "/api/auth/logout", testutil.Reply{Status: http.StatusInternalServerError})

	resp, _ := b.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = b.do(http.MethodGet, "/panel/dashboard", nil)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD desde el panel
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_CrearYVerPrecio(t *testing.T) {
	b := newBrowser(t)
	b.login()

	_, body := b.do(http.MethodGet, "/panel/products", nil)
	assert.Contains(t, body, "Nenhum produto cadastrado.")

	_, body = b.do(http.MethodGet, "/panel/products/new", nil)
	assert.Contains(t, body, "Adicionar produto")
	assert.Contains(t, body, "Ferramentas", "el selector trae las categorías precargadas")

	resp, body := b.do(http.MethodPost, "/panel/products/editor", url.Values{
		"name": {"Widget"}, "price": {"9.99"}, "stock": {"5"}, "category_id": {"c1"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "R$ 9.99")
	assert.Contains(t, body, "Produto adicionado com sucesso.")
	assert.NotContains(t, body, `id="editor"`)
}

func TestProductos_ErrorDeValidacionMantieneElEditor(t *testing.T) {
	b := newBrowser(t)
	b.login()
	b.do(http.MethodGet, "/panel/products/new", nil)

	resp, body := b.do(http.MethodPost, "/panel/products/editor", url.Values{"name": {"Widget"}, "price": {"abc"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `id="editor-error"`)
	assert.Contains(t, body, "Preço inválido.")
	assert.Contains(t, body, `value="Widget"`)
	assert.Equal(t, 0, b.backend.Count(http.MethodPost, "/api/products"))
}

func TestClientes_BorradoConConfirmacion(t *testing.T) {
	b := newBrowser(t)
	b.backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	b.login()
	b.do(http.MethodGet, "/panel/clients", nil)

	_, body := b.do(http.MethodPost, "/panel/clients/rows", url.Values{"action": {"delete"}, "id": {"x1"}})
	assert.Contains(t, body, "Tem certeza que deseja excluir este cliente?")
	assert.Contains(t, body, `action="/panel/clients/x1/delete"`)
	assert.Equal(t, 0, b.backend.Count(http.MethodDelete, "/api/clients/x1"))

	_, body = b.do(http.MethodPost, "/panel/clients/x1/delete", url.Values{"confirm": {"no"}})
	assert.Equal(t, 0, b.backend.Count(http.MethodDelete, "/api/clients/x1"))
	assert.Contains(t, body, "Ana")

	_, body = b.do(http.MethodPost, "/panel/clients/x1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, 1, b.backend.Count(http.MethodDelete, "/api/clients/x1"))
	assert.Contains(t, body, "Cliente excluído com sucesso.")
	assert.Contains(t, body, "Nenhum cliente cadastrado.")
}

func TestClientes_BorradoConIDQueRequiereEscape(t *testing.T) {
	b := newBrowser(t)
	b.backend.Seed("clients", map[string]any{"id": "a b", "name": "Ana", "email": "ana@b.com"})
	b.login()
	b.do(http.MethodGet, "/panel/clients", nil)

	_, body := b.do(http.MethodPost, "/panel/clients/rows", url.Values{"action": {"delete"}, "id": {"a b"}})
	assert.Contains(t, body, `action="/panel/clients/a%20b/delete"`)

	_, body = b.do(http.MethodPost, "/panel/clients/a%20b/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, 1, b.backend.Count(http.MethodDelete, "/api/clients/a b"))
	assert.Equal(t, 0, b.backend.Count(http.MethodDelete, "/api/clients/a%20b"))
	assert.Contains(t, body, "Cliente excluído com sucesso.")
}

func TestEditor_SegundoEditorAvisaEnPortugues(t *testing.T) {
	b := newBrowser(t)
	b.backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	b.login()
	b.do(http.MethodGet, "/panel/clients", nil)
	b.do(http.MethodGet, "/panel/clients/new", nil)

	resp, body := b.do(http.MethodPost, "/panel/clients/rows", url.Values{"action": {"edit"}, "id": {"x1"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Já existe um formulário aberto. Feche-o antes de continuar.")
	assert.NotContains(t, body, "ya hay un editor")
}

func TestClientes_EditarDesdeLaFila(t *testing.T) {
	b := newBrowser(t)
	b.backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	b.login()
	b.do(http.MethodGet, "/panel/clients", nil)

	_, body := b.do(http.MethodPost, "/panel/clients/rows", url.Values{"action": {"edit"}, "id": {"x1"}})
	assert.Contains(t, body, "Editar cliente")

	resp, body := b.do(http.MethodPost, "/panel/clients/rows", url.Values{"action": {"edit"}, "id": {"nope"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Registro não encontrado na lista. Atualize a página.")
	assert.NotContains(t, body, "no cargado")

	b.do(http.MethodPost, "/panel/clients/editor/close", nil)
	_, body = b.do(http.MethodGet, "/panel/clients", nil)
	assert.NotContains(t, body, `id="editor"`)
}

func TestPanel_PaginaDesconocida(t *testing.T) {
	b := newBrowser(t)
	b.login()

	resp, body := b.do(http.MethodGet, "/panel/inventory", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "NOT_FOUND", out.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Relatórios y sesión JSON
// ──────────────────────────────────────────────────────────────────────────────

func TestReportes_ExportaCSV(t *testing.T) {
	b := newBrowser(t)
	b.backend.Seed("products", map[string]any{"id": "p1", "name": "Martelo", "price": 25.5, "stock": 3, "category_id": "c1"})
	b.login()

	_, body := b.do(http.MethodGet, "/panel/reports", nil)
	assert.Contains(t, body, `href="/panel/reports/products.csv"`)

	resp, body := b.do(http.MethodGet, "/panel/reports/products.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=windows-1252", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, body, "Martelo;R$ 25.50;3;Ferramentas")

	resp, _ = b.do(http.MethodGet, "/panel/reports/users.csv", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_JSON(t *testing.T) {
	b := newBrowser(t)

	_, body := b.do(http.MethodGet, "/api/session", nil)
	var out dto.SessionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.False(t, out.LoggedIn)
	assert.Equal(t, "login", out.Page)

	b.login()
	b.do(http.MethodGet, "/panel/products/new", nil)
	_, body = b.do(http.MethodGet, "/api/session", nil)
	out = dto.SessionResponse{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.True(t, out.LoggedIn)
	require.NotNil(t, out.User)
	assert.Equal(t, testutil.AdminEmail, out.User.Email)
	assert.NotEmpty(t, out.ExpiresAt)
	assert.Equal(t, 2, out.Counts["categories"])
	require.NotNil(t, out.Editor)
	assert.Equal(t, "creating", out.Editor.Mode)
}

func TestSession_401DelBackendCierraLaSesion(t *testing.T) {
	b := newBrowser(t)
	b.login()
	b.backend.On(http.MethodGet, "/api/products", testutil.Reply{Status: http.StatusUnauthorized, Body: map[string]any{"error": "jwt expired"}})

	resp, _ := b.do(http.MethodGet, "/panel/products", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := b.do(http.MethodGet, "/login", nil)
	assert.Contains(t, body, "Sessão expirada. Entre novamente.")
}
