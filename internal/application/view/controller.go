// Package view contiene el controlador de vista del panel: la máquina de estados
// de navegación, las colecciones en memoria, el editor modal y la orquestación
// del CRUD contra la API de S&G. No conoce HTTP ni terminales; los front ends
// (servidor del panel y sgctl) lo manejan y pintan sus modelos de vista.
package view

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jhoicas/sg-panel/internal/application/dto"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
	"github.com/jhoicas/sg-panel/internal/infrastructure/metrics"
	pkgjwt "github.com/jhoicas/sg-panel/pkg/jwt"
)

// MsgSessionExpired texto mostrado en el login cuando el backend rechaza el token.
const MsgSessionExpired = "Sessão expirada. Entre novamente."

// NoticeLevel severidad de un aviso.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice aviso pendiente de mostrar.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Deps dependencias del controlador.
type Deps struct {
	NewAPI APIFactory
	Logger zerolog.Logger
	Now    func() time.Time
}

// ticket identifica una carga en vuelo. La respuesta sólo se aplica si el ticket
// sigue vigente al volver.
type ticket struct {
	kind   entity.Kind
	seq    uint64
	navGen uint64
	bound  bool // atada a la vista que la pidió
	epoch  uint64
}

// Controller estado de un panel (una sesión de navegador o una ejecución de sgctl).
// mu protege todo el estado y nunca se mantiene durante una llamada de red.
type Controller struct {
	api API
	log zerolog.Logger
	now func() time.Time

	mu         sync.Mutex
	page       Page
	session    *entity.Session
	loginError string
	navGen     uint64
	epoch      uint64 // cambia en cada login/logout
	loadSeq    map[entity.Kind]uint64

	products   Collection[entity.Product]
	clients    Collection[entity.Client]
	users      Collection[entity.User]
	categories Collection[entity.Category]

	editor  Editor
	notices []Notice
}

// New crea un controlador en estado LoggedOut.
func New(deps Deps) *Controller {
	c := &Controller{
		log:     deps.Logger,
		now:     deps.Now,
		page:    PageLoggedOut,
		loadSeq: map[entity.Kind]uint64{},
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.api = deps.NewAPI(TokenFunc(c.Token))
	return c
}

// TokenFunc adapta una función a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Token bearer token de la sesión actual ("" sin sesión).
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// ── Sesión ────────────────────────────────────────────────────────────────────

// Login autentica contra el backend. Con éxito pasa a Dashboard y precarga las
// categorías; con fallo deja el texto en LoginError y sigue en LoggedOut.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := &domain.ValidationError{Message: "Informe email e senha."}
		c.mu.Lock()
		c.loginError = err.Message
		c.mu.Unlock()
		return err
	}

	token, user, err := c.api.SignIn(ctx, email, password)
	if err != nil {
		msg := loginMessage(err)
		c.mu.Lock()
		c.loginError = msg
		c.mu.Unlock()
		c.log.Warn().Err(err).Str("email", email).Msg("login rechazado")
		return err
	}

	sess := &entity.Session{User: user, Token: token, StartedAt: c.now()}
	if info, err := pkgjwt.Inspect(token); err == nil {
		sess.ExpiresAt = info.ExpiresAt
	} else {
		c.log.Debug().Err(err).Msg("token sin claims legibles; sin expiración local")
	}

	c.mu.Lock()
	c.resetLocked("")
	c.session = sess
	c.page = PageDashboard
	c.mu.Unlock()

	c.log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("sesión iniciada")
	_ = c.LoadCollection(ctx, entity.KindCategories)
	return nil
}

func loginMessage(err error) string {
	if errors.Is(err, domain.ErrConnection) {
		return domain.UserMessage(err)
	}
	return "Falha no login: " + domain.UserMessage(err)
}

// Logout avisa al backend (sin esperar éxito) y vuelve siempre a LoggedOut.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	loggedIn := c.session != nil
	c.mu.Unlock()

	if loggedIn {
		if err := c.api.SignOut(ctx); err != nil {
			c.log.Warn().Err(err).Msg("logout en el backend falló; se cierra la sesión local igualmente")
		}
	}

	c.mu.Lock()
	c.resetLocked("")
	c.mu.Unlock()
}

// resetLocked destruye la sesión y todo el estado que depende de ella.
func (c *Controller) resetLocked(loginError string) {
	c.session = nil
	c.page = PageLoggedOut
	c.loginError = loginError
	c.editor = Editor{}
	c.notices = nil
	c.epoch++
	c.navGen++
	c.products.Reset()
	c.clients.Reset()
	c.users.Reset()
	c.categories.Reset()
}

func (c *Controller) expireLocked() {
	c.log.Info().Msg("token rechazado o vencido; sesión cerrada")
	c.resetLocked(MsgSessionExpired)
}

// requireSessionLocked exige sesión vigente; un token vencido cierra la sesión.
func (c *Controller) requireSessionLocked() error {
	if c.session == nil {
		return domain.ErrNotLoggedIn
	}
	if c.session.Expired(c.now()) {
		c.expireLocked()
		return domain.ErrNotLoggedIn
	}
	return nil
}

func unauthorized(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// failLocked registra un fallo de backend. Un 401 con sesión cierra la sesión;
// cualquier otro fallo queda como aviso.
func (c *Controller) failLocked(action string, err error) error {
	if unauthorized(err) && c.session != nil {
		c.expireLocked()
		return err
	}
	c.log.Warn().Err(err).Str("action", action).Msg("operación fallida")
	c.notices = append(c.notices, Notice{Level: NoticeError, Text: action + ": " + domain.UserMessage(err)})
	return err
}

// ── Navegación ────────────────────────────────────────────────────────────────

// Navigate cambia de página, cierra el editor y lanza la única carga que la
// página necesita. Un fallo de la carga queda como aviso, no como error.
func (c *Controller) Navigate(ctx context.Context, page Page) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if _, ok := ParsePage(string(page)); !ok {
		c.mu.Unlock()
		return fmt.Errorf("view: %w: %q", domain.ErrUnknownPage, page)
	}
	c.page = page
	c.editor = Editor{}
	c.navGen++
	kind, loads := page.LoadsKind()
	c.mu.Unlock()

	if loads {
		_ = c.LoadCollection(ctx, kind)
	}
	return nil
}

// ── Colecciones ───────────────────────────────────────────────────────────────

// LoadCollection reemplaza la colección con la respuesta del backend. Si falla,
// la colección anterior se conserva. Una respuesta cuyo ticket ya no es vigente
// (otra carga posterior, cambio de vista o de sesión) se descarta.
func (c *Controller) LoadCollection(ctx context.Context, kind entity.Kind) error {
	if _, ok := entity.ParseKind(string(kind)); !ok {
		return fmt.Errorf("view: %w: %q", domain.ErrUnknownKind, kind)
	}

	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	t := c.issueLocked(kind)
	c.mu.Unlock()

	var apply func(at time.Time)
	var err error
	switch kind {
	case entity.KindProducts:
		var items []entity.Product
		items, err = c.api.ListProducts(ctx)
		apply = func(at time.Time) { c.products.Replace(items, at) }
	case entity.KindClients:
		var items []entity.Client
		items, err = c.api.ListClients(ctx)
		apply = func(at time.Time) { c.clients.Replace(items, at) }
	case entity.KindUsers:
		var items []entity.User
		items, err = c.api.ListUsers(ctx)
		apply = func(at time.Time) { c.users.Replace(items, at) }
	case entity.KindCategories:
		var items []entity.Category
		items, err = c.api.ListCategories(ctx)
		apply = func(at time.Time) { c.categories.Replace(items, at) }
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(t) {
		metrics.StaleResponsesTotal.WithLabelValues(string(kind)).Inc()
		c.log.Debug().Str("kind", string(kind)).Uint64("seq", t.seq).Msg("respuesta tardía descartada")
		return nil
	}
	if err != nil {
		return c.failLocked("Erro ao carregar "+string(kind), err)
	}
	apply(c.now())
	return nil
}

func (c *Controller) issueLocked(kind entity.Kind) ticket {
	c.loadSeq[kind]++
	return ticket{
		kind:   kind,
		seq:    c.loadSeq[kind],
		navGen: c.navGen,
		bound:  kind != entity.KindCategories,
		epoch:  c.epoch,
	}
}

func (c *Controller) currentLocked(t ticket) bool {
	if t.epoch != c.epoch || t.seq != c.loadSeq[t.kind] {
		return false
	}
	return !t.bound || t.navGen == c.navGen
}

// Render construye la tabla de la colección tal como está en memoria.
func (c *Controller) Render(kind entity.Kind) (Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case entity.KindProducts:
		names := categoryNames(c.categories.items)
		return buildTable(kind, c.products.Items(), func(p entity.Product) []string {
			return ProductCells(p, names)
		}), nil
	case entity.KindClients:
		return buildTable(kind, c.clients.Items(), ClientCells), nil
	case entity.KindUsers:
		return buildTable(kind, c.users.Items(), UserCells), nil
	case entity.KindCategories:
		return buildTable(kind, c.categories.Items(), CategoryCells), nil
	default:
		return Table{}, fmt.Errorf("view: %w: %q", domain.ErrUnknownKind, kind)
	}
}

// Products copia de la colección de productos (exportaciones).
func (c *Controller) Products() []entity.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products.Items()
}

// Clients copia de la colección de clientes.
func (c *Controller) Clients() []entity.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clients.Items()
}

// CategoryNames id → nombre de las categorías cargadas.
func (c *Controller) CategoryNames() map[entity.ID]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return categoryNames(c.categories.items)
}

// CategoryOptions opciones del selector de categoría del formulario de producto.
func (c *Controller) CategoryOptions() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts := make([]Option, 0, c.categories.Len())
	for _, cat := range c.categories.items {
		opts = append(opts, Option{Value: cat.ID.String(), Label: cat.Name})
	}
	return opts
}

func (c *Controller) findLocked(kind entity.Kind, id entity.ID) (entity.Record, bool) {
	var (
		rec entity.Record
		ok  bool
	)
	switch kind {
	case entity.KindProducts:
		rec, ok = c.products.Find(id)
	case entity.KindClients:
		rec, ok = c.clients.Find(id)
	case entity.KindUsers:
		rec, ok = c.users.Find(id)
	case entity.KindCategories:
		rec, ok = c.categories.Find(id)
	}
	return rec, ok
}

// ── Editor ────────────────────────────────────────────────────────────────────

// OpenEditor abre el editor: id vacío crea, id de un registro cargado edita.
// No se pide el registro al backend.
func (c *Controller) OpenEditor(kind entity.Kind, id entity.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireSessionLocked(); err != nil {
		return err
	}
	if _, ok := entity.ParseKind(string(kind)); !ok || !kind.Editable() {
		return fmt.Errorf("view: %w: %q", domain.ErrUnknownKind, kind)
	}
	if c.editor.Open() {
		return domain.ErrEditorOpen
	}
	if id == "" {
		values := FormValues{}
		for _, f := range Fields(kind) {
			values[f] = ""
		}
		c.editor = Editor{Mode: EditorCreating, Kind: kind, Values: values}
		return nil
	}
	rec, ok := c.findLocked(kind, id)
	if !ok {
		return fmt.Errorf("view: %w: %s %s", domain.ErrRecordNotLoaded, kind, id)
	}
	c.editor = Editor{Mode: EditorEditing, Kind: kind, RecordID: id, Values: recordValues(rec)}
	return nil
}

// CloseEditor cierra el editor sin enviar nada.
func (c *Controller) CloseEditor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor = Editor{}
}

// Editor copia del estado del editor.
func (c *Controller) Editor() Editor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor.copy()
}

// SubmitEditor valida el formulario y lo envía: PUT si el editor está ligado a un
// registro, POST si está creando (usuarios por el endpoint de registro). Con éxito
// cierra el editor y recarga; con fallo el editor sigue abierto con los valores
// enviados y el texto del error.
func (c *Controller) SubmitEditor(ctx context.Context, kind entity.Kind, values FormValues) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	ed := c.editor
	if !ed.Open() || ed.Kind != kind {
		c.mu.Unlock()
		return domain.ErrEditorClosed
	}
	epoch := c.epoch
	c.editor.Values = values.clone()
	c.editor.Error = ""
	c.mu.Unlock()

	req, err := buildRequest(kind, ed.Mode, values)
	if err != nil {
		c.mu.Lock()
		if c.sameEditorLocked(ed) {
			c.editor.Error = domain.UserMessage(err)
		}
		c.mu.Unlock()
		return err
	}

	switch {
	case ed.Mode == EditorEditing:
		err = c.api.Update(ctx, kind, ed.RecordID, req)
	case kind == entity.KindUsers:
		err = c.api.SignUp(ctx, req.(dto.UserRequest))
	default:
		err = c.api.Create(ctx, kind, req)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return domain.ErrNotLoggedIn
	}
	if err != nil {
		if unauthorized(err) {
			c.expireLocked()
			c.mu.Unlock()
			return err
		}
		if c.sameEditorLocked(ed) {
			c.editor.Error = "Erro ao salvar " + kind.Singular() + ": " + domain.UserMessage(err)
		}
		c.log.Warn().Err(err).Str("kind", string(kind)).Str("mode", ed.Mode.String()).Msg("no se pudo guardar")
		c.mu.Unlock()
		return err
	}
	if c.sameEditorLocked(ed) {
		c.editor = Editor{}
	}
	verb := "adicionado"
	if ed.Mode == EditorEditing {
		verb = "atualizado"
	}
	c.notices = append(c.notices, Notice{Level: NoticeSuccess, Text: capitalize(kind.Singular()) + " " + verb + " com sucesso."})
	c.mu.Unlock()

	_ = c.LoadCollection(ctx, kind)
	return nil
}

func (c *Controller) sameEditorLocked(ed Editor) bool {
	return c.editor.Mode == ed.Mode && c.editor.Kind == ed.Kind && c.editor.RecordID == ed.RecordID
}

// ── Borrado y acciones de fila ────────────────────────────────────────────────

// DeletePrompt pregunta de confirmación del borrado.
func DeletePrompt(kind entity.Kind) string {
	return "Tem certeza que deseja excluir este " + kind.Singular() + "?"
}

// DeleteRecord pide confirmación y borra. Rechazada la confirmación no se envía
// nada y devuelve ErrCancelled; un fallo deja la colección como estaba.
func (c *Controller) DeleteRecord(ctx context.Context, kind entity.Kind, id entity.ID, confirm Confirm) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	epoch := c.epoch
	c.mu.Unlock()

	if _, ok := entity.ParseKind(string(kind)); !ok || !kind.Editable() {
		return fmt.Errorf("view: %w: %q", domain.ErrUnknownKind, kind)
	}
	if confirm == nil {
		confirm = Never
	}
	if !confirm(DeletePrompt(kind)) {
		return domain.ErrCancelled
	}

	err := c.api.Delete(ctx, kind, id)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return domain.ErrNotLoggedIn
	}
	if err != nil {
		err = c.failLocked("Erro ao excluir "+kind.Singular(), err)
		c.mu.Unlock()
		return err
	}
	c.notices = append(c.notices, Notice{Level: NoticeSuccess, Text: capitalize(kind.Singular()) + " excluído com sucesso."})
	c.mu.Unlock()

	_ = c.LoadCollection(ctx, kind)
	return nil
}

// RowAction punto de entrada único para los botones de una tabla: resuelve el
// registro por id en el estado actual y despacha edit o delete.
func (c *Controller) RowAction(ctx context.Context, kind entity.Kind, action string, id entity.ID, confirm Confirm) error {
	c.mu.Lock()
	_, ok := c.findLocked(kind, id)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("view: %w: %s %s", domain.ErrRecordNotLoaded, kind, id)
	}
	switch action {
	case ActionEdit:
		return c.OpenEditor(kind, id)
	case ActionDelete:
		return c.DeleteRecord(ctx, kind, id, confirm)
	default:
		return fmt.Errorf("view: %w: ação %q", domain.ErrInvalidInput, action)
	}
}

// ── Lectura de estado ─────────────────────────────────────────────────────────

// Notices devuelve y vacía la cola de avisos.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Snapshot copia de sólo lectura del estado para el layout.
type Snapshot struct {
	Page       Page
	Title      string
	LoggedIn   bool
	User       entity.User
	ExpiresAt  time.Time
	Editor     Editor
	LoginError string
	Counts     map[entity.Kind]int
}

// UserLabel nombre del usuario para la cabecera.
func (s Snapshot) UserLabel() string { return s.User.DisplayName() }

// Snapshot devuelve el estado actual.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Page:       c.page,
		Title:      c.page.Title(),
		LoggedIn:   c.session != nil,
		Editor:     c.editor.copy(),
		LoginError: c.loginError,
		Counts: map[entity.Kind]int{
			entity.KindProducts:   c.products.Len(),
			entity.KindClients:    c.clients.Len(),
			entity.KindUsers:      c.users.Len(),
			entity.KindCategories: c.categories.Len(),
		},
	}
	if c.session != nil {
		s.User = c.session.User
		s.ExpiresAt = c.session.ExpiresAt
	}
	return s
}

// LoggedIn indica si hay sesión (sin comprobar la expiración).
func (c *Controller) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Page página actual.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
