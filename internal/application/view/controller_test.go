package view_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
	"github.com/jhoicas/sg-panel/internal/infrastructure/sgapi"
	"github.com/jhoicas/sg-panel/internal/testutil"
)

func newController(t *testing.T, backend *testutil.Backend, now func() time.Time) *view.Controller {
	t.Helper()
	return view.New(view.Deps{
		NewAPI: func(tokens view.TokenSource) view.API {
			return sgapi.New(sgapi.Config{BaseURL: backend.URL(), Timeout: 2 * time.Second, Logger: zerolog.Nop()}, tokens)
		},
		Logger: zerolog.Nop(),
		Now:    now,
	})
}

func loggedIn(t *testing.T, backend *testutil.Backend) *view.Controller {
	t.Helper()
	c := newController(t, backend, nil)
	require.NoError(t, c.Login(context.Background(), testutil.AdminEmail, testutil.AdminPassword))
	return c
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newController(t, backend, nil)

	err := c.Login(context.Background(), testutil.AdminEmail, "wrong")
	assert.ErrorIs(t, err, domain.ErrAuth)

	snap := c.Snapshot()
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, view.PageLoggedOut, snap.Page)
	assert.Contains(t, snap.LoginError, "invalid credentials")
	assert.Equal(t, "Falha no login: invalid credentials", snap.LoginError)
}

func TestLogin_CamposVaciosNoLlamanAlBackend(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newController(t, backend, nil)

	err := c.Login(context.Background(), "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, backend.Requests())
	assert.NotEmpty(t, c.Snapshot().LoginError)
}

func TestLogin_ExitoPasaADashboardYPrecargaCategorias(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)

	snap := c.Snapshot()
	assert.True(t, snap.LoggedIn)
	assert.Equal(t, view.PageDashboard, snap.Page)
	assert.Equal(t, "Admin S&G", snap.UserLabel())
	assert.False(t, snap.ExpiresAt.IsZero(), "la expiración sale del claim exp")
	assert.Equal(t, 2, snap.Counts[entity.KindCategories])
	assert.Empty(t, snap.LoginError)
	assert.NotEmpty(t, c.Token())

	req, ok := backend.Last(http.MethodGet, "/api/categories")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+c.Token(), req.Auth)
}

func TestLogin_SinConexion(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newController(t, backend, nil)
	backend.Server.Close()

	err := c.Login(context.Background(), testutil.AdminEmail, testutil.AdminPassword)
	assert.ErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, "Não foi possível conectar ao servidor.", c.Snapshot().LoginError)
}

func TestNavigate_RequiereSesion(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newController(t, backend, nil)

	assert.ErrorIs(t, c.Navigate(context.Background(), view.PageProducts), domain.ErrNotLoggedIn)

	c = loggedIn(t, backend)
	assert.ErrorIs(t, c.Navigate(context.Background(), view.Page("admin")), domain.ErrUnknownPage)
}

func TestNavigate_UnaCargaPorPagina(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("products",
		map[string]any{"id": "p1", "name": "Martelo", "price": 25.5, "stock": 3, "category_id": "c1"},
		map[string]any{"id": "p2", "name": "Fio", "price": 4, "stock": 0, "category_id": "zz"},
	)
	c := loggedIn(t, backend)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, view.PageProducts))
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/api/products"))

	table, err := c.Render(entity.KindProducts)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, entity.ID("p1"), table.Rows[0].ID)
	assert.Equal(t, []string{"Martelo", "R$ 25.50", "3", "Ferramentas"}, table.Rows[0].Cells)
	assert.Equal(t, []string{"Fio", "R$ 4.00", "0", "N/A"}, table.Rows[1].Cells)
	assert.Len(t, table.Rows[0].Actions, 2)

	require.NoError(t, c.Navigate(ctx, view.PageReports))
	require.NoError(t, c.Navigate(ctx, view.PageDashboard))
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/api/products"), "reports y dashboard no cargan nada")

	require.NoError(t, c.Navigate(ctx, view.PageSettings))
	assert.Equal(t, 1, backend.Count(http.MethodGet, "/api/users"))
	users, err := c.Render(entity.KindUsers)
	require.NoError(t, err)
	require.Len(t, users.Rows, 1)
	assert.Equal(t, []string{"Admin S&G", testutil.AdminEmail, "Sim"}, users.Rows[0].Cells)
}

func TestLoadCollection_FalloConservaLaColeccionAnterior(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageClients))
	c.Notices()

	backend.On(http.MethodGet, "/api/clients", testutil.Reply{Status: http.StatusInternalServerError, Body: map[string]any{"error": "db down"}})
	err := c.LoadCollection(ctx, entity.KindClients)
	assert.ErrorIs(t, err, domain.ErrServer)

	table, _ := c.Render(entity.KindClients)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Ana", "ana@b.com", "N/A"}, table.Rows[0].Cells)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, view.NoticeError, notices[0].Level)
	assert.Contains(t, notices[0].Text, "db down")
	assert.Empty(t, c.Notices(), "Notices vacía la cola")
}

func TestLoadCollection_RespuestaSinListaConservaLaColeccion(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageClients))
	c.Notices()

	backend.On(http.MethodGet, "/api/clients", testutil.Reply{Status: http.StatusOK, Body: map[string]any{"message": "maintenance"}})
	err := c.LoadCollection(ctx, entity.KindClients)
	assert.ErrorIs(t, err, domain.ErrServer)

	table, _ := c.Render(entity.KindClients)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, entity.ID("x1"), table.Rows[0].ID)

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, view.NoticeError, notices[0].Level)
	assert.Contains(t, notices[0].Text, "Resposta inválida do servidor.")
}

func TestLoadCollection_401CierraLaSesion(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)

	backend.On(http.MethodGet, "/api/products", testutil.Reply{Status: http.StatusUnauthorized, Body: map[string]any{"error": "jwt expired"}})
	require.NoError(t, c.Navigate(context.Background(), view.PageProducts))

	snap := c.Snapshot()
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, view.PageLoggedOut, snap.Page)
	assert.Equal(t, view.MsgSessionExpired, snap.LoginError)
	assert.Empty(t, c.Token())
}

func TestLoadCollection_RespuestaTardiaSeDescarta(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.OnFunc(http.MethodGet, "/api/products", func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"late","name":"Tardio","price":1,"stock":1}]`))
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Navigate(context.Background(), view.PageProducts)
	}()
	<-started
	require.NoError(t, c.Navigate(context.Background(), view.PageClients))
	close(release)
	wg.Wait()

	assert.Equal(t, view.PageClients, c.Page())
	table, _ := c.Render(entity.KindProducts)
	assert.Empty(t, table.Rows, "la vista de productos ya no estaba activa")
}

func TestToken_VencidoCierraLaSesion(t *testing.T) {
	backend := testutil.NewBackend(t)
	now := time.Now()
	c := newController(t, backend, func() time.Time { return now })
	require.NoError(t, c.Login(context.Background(), testutil.AdminEmail, testutil.AdminPassword))

	now = now.Add(2 * time.Hour)
	err := c.Navigate(context.Background(), view.PageProducts)
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.Equal(t, view.MsgSessionExpired, c.Snapshot().LoginError)
	assert.Equal(t, 0, backend.Count(http.MethodGet, "/api/products"))
}

func TestEditor_CrearProductoYRenderizarPrecio(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageProducts))

	require.NoError(t, c.OpenEditor(entity.KindProducts, ""))
	ed := c.Editor()
	assert.Equal(t, view.EditorCreating, ed.Mode)
	assert.Equal(t, "Adicionar produto", ed.Title())

	err := c.SubmitEditor(ctx, entity.KindProducts, view.FormValues{
		"name": "Widget", "price": "9,99", "stock": "5", "category_id": "c2",
	})
	require.NoError(t, err)

	req, ok := backend.Last(http.MethodPost, "/api/products")
	require.True(t, ok)
	assert.Equal(t, "Widget", req.Body["name"])
	assert.InDelta(t, 9.99, req.Body["price"], 0.0001)
	assert.EqualValues(t, 5, req.Body["stock"])

	assert.False(t, c.Editor().Open())
	assert.Equal(t, 2, backend.Count(http.MethodGet, "/api/products"), "recarga tras guardar")

	table, _ := c.Render(entity.KindProducts)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "R$ 9.99", table.Rows[0].Cells[1])
	assert.Equal(t, "Elétricos", table.Rows[0].Cells[3])

	notices := c.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Produto adicionado com sucesso.", notices[0].Text)
}

func TestEditor_EditarEnviaPUTAlID(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com", "phone": "1199"})
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageClients))

	require.NoError(t, c.RowAction(ctx, entity.KindClients, view.ActionEdit, "x1", nil))
	ed := c.Editor()
	assert.Equal(t, view.EditorEditing, ed.Mode)
	assert.Equal(t, "Editar cliente", ed.Title())
	assert.Equal(t, "1199", ed.Value("phone"))

	require.NoError(t, c.SubmitEditor(ctx, entity.KindClients, view.FormValues{"name": "Ana Maria", "email": "ana@b.com", "phone": ""}))
	assert.Equal(t, 1, backend.Count(http.MethodPut, "/api/clients/x1"))
	assert.Equal(t, 0, backend.Count(http.MethodPost, "/api/clients"))

	table, _ := c.Render(entity.KindClients)
	assert.Equal(t, "Ana Maria", table.Rows[0].Cells[0])
}

func TestEditor_SoloUnoAbierto(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)
	ctx := context.Background()

	require.NoError(t, c.OpenEditor(entity.KindClients, ""))
	assert.ErrorIs(t, c.OpenEditor(entity.KindProducts, ""), domain.ErrEditorOpen)

	require.NoError(t, c.Navigate(ctx, view.PageDashboard))
	assert.False(t, c.Editor().Open(), "navegar cierra el editor")
	assert.ErrorIs(t, c.SubmitEditor(ctx, entity.KindClients, view.FormValues{}), domain.ErrEditorClosed)

	assert.ErrorIs(t, c.OpenEditor(entity.KindCategories, ""), domain.ErrUnknownKind)
	assert.ErrorIs(t, c.OpenEditor(entity.KindClients, "nope"), domain.ErrRecordNotLoaded)
}

func TestEditor_FalloMantieneValoresYError(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.On(http.MethodPost, "/api/clients", testutil.Reply{Status: http.StatusConflict, Body: map[string]any{"error": "email duplicado"}})
	c := loggedIn(t, backend)
	ctx := context.Background()

	require.NoError(t, c.OpenEditor(entity.KindClients, ""))
	values := view.FormValues{"name": "Ana", "email": "ana@b.com", "phone": ""}
	err := c.SubmitEditor(ctx, entity.KindClients, values)
	assert.ErrorIs(t, err, domain.ErrValidation)

	ed := c.Editor()
	assert.True(t, ed.Open())
	assert.Equal(t, "Ana", ed.Value("name"))
	assert.Equal(t, "Erro ao salvar cliente: email duplicado", ed.Error)
}

func TestEditor_ValidacionAntesDeEnviar(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)
	ctx := context.Background()

	require.NoError(t, c.OpenEditor(entity.KindProducts, ""))
	err := c.SubmitEditor(ctx, entity.KindProducts, view.FormValues{"name": "", "price": "-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Preço não pode ser negativo.", c.Editor().Error)

	err = c.SubmitEditor(ctx, entity.KindProducts, view.FormValues{"name": "", "price": "2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, c.Editor().Error, "name é obrigatório")

	assert.Equal(t, 0, backend.Count(http.MethodPost, "/api/products"))
}

func TestEditor_UsuarioNuevoExigePassword(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageSettings))

	require.NoError(t, c.OpenEditor(entity.KindUsers, ""))
	assert.True(t, c.Editor().PasswordRequired())

	err := c.SubmitEditor(ctx, entity.KindUsers, view.FormValues{"full_name": "Bia", "email": "bia@sg.com", "password": ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "A senha é obrigatória para novos usuários.", c.Editor().Error)
	assert.Equal(t, 0, backend.Count(http.MethodPost, "/api/auth/signup"))

	require.NoError(t, c.SubmitEditor(ctx, entity.KindUsers, view.FormValues{"full_name": "Bia", "email": "bia@sg.com", "password": "segredo1"}))
	assert.Equal(t, 1, backend.Count(http.MethodPost, "/api/auth/signup"), "alta de usuarios por el endpoint de registro")
	assert.Equal(t, 0, backend.Count(http.MethodPost, "/api/users"))
}

func TestEditor_ActualizarUsuarioOmitePasswordVacio(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageSettings))

	require.NoError(t, c.OpenEditor(entity.KindUsers, testutil.AdminID))
	ed := c.Editor()
	assert.False(t, ed.PasswordRequired())
	assert.True(t, ed.Checked("is_admin"))
	assert.Empty(t, ed.Value("password"))

	require.NoError(t, c.SubmitEditor(ctx, entity.KindUsers, view.FormValues{
		"full_name": "Admin", "email": testutil.AdminEmail, "password": "", "is_admin": "on",
	}))
	req, ok := backend.Last(http.MethodPut, "/api/users/"+testutil.AdminID)
	require.True(t, ok)
	_, hasPassword := req.Body["password"]
	assert.False(t, hasPassword)
	assert.Equal(t, true, req.Body["is_admin"])
}

func TestDelete_RechazadoNoEnviaNada(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageClients))

	var prompt string
	err := c.RowAction(ctx, entity.KindClients, view.ActionDelete, "x1", func(p string) bool {
		prompt = p
		return false
	})
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, "Tem certeza que deseja excluir este cliente?", prompt)
	assert.Equal(t, 0, backend.Count(http.MethodDelete, "/api/clients/x1"))

	table, _ := c.Render(entity.KindClients)
	assert.Len(t, table.Rows, 1)
}

func TestDelete_ConfirmadoBorraYRecarga(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Seed("clients", map[string]any{"id": "x1", "name": "Ana", "email": "ana@b.com"})
	c := loggedIn(t, backend)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, view.PageClients))

	require.NoError(t, c.DeleteRecord(ctx, entity.KindClients, "x1", view.Always))
	assert.Equal(t, 1, backend.Count(http.MethodDelete, "/api/clients/x1"))

	table, _ := c.Render(entity.KindClients)
	assert.Empty(t, table.Rows)

	err := c.DeleteRecord(ctx, entity.KindClients, "x1", view.Always)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	notices := c.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, view.NoticeError, notices[1].Level)
}

func TestLogout_SiempreVuelveALoggedOut(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.On(http.MethodPost, "/api/auth/logout", testutil.Reply{Status: http.StatusInternalServerError, Body: map[string]any{"error": "boom"}})
	c := loggedIn(t, backend)
	require.NoError(t, c.OpenEditor(entity.KindProducts, ""))

	c.Logout(context.Background())

	snap := c.Snapshot()
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, view.PageLoggedOut, snap.Page)
	assert.False(t, snap.Editor.Open())
	assert.Zero(t, snap.Counts[entity.KindCategories])
	assert.Equal(t, 1, backend.Count(http.MethodPost, "/api/auth/logout"))
}
