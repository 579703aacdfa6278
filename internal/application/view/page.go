package view

import "github.com/jhoicas/sg-panel/internal/domain/entity"

// Page estado de navegación del panel.
type Page string

const (
	PageLoggedOut   Page = "login"
	PageDashboard   Page = "dashboard"
	PageProducts    Page = "products"
	PageClients     Page = "clients"
	PageSales       Page = "sales"
	PageReceivables Page = "receivables"
	PageReports     Page = "reports"
	PageSettings    Page = "settings"
)

// Pages páginas autenticadas, en el orden del menú.
var Pages = []Page{PageDashboard, PageProducts, PageClients, PageSales, PageReceivables, PageReports, PageSettings}

var pageTitles = map[Page]string{
	PageLoggedOut:   "Entrar",
	PageDashboard:   "Dashboard",
	PageProducts:    "Gestão de Produtos",
	PageClients:     "Gestão de Clientes",
	PageSales:       "Registro de Vendas",
	PageReceivables: "Contas a Receber",
	PageReports:     "Relatórios",
	PageSettings:    "Configurações",
}

// ParsePage valida una página autenticada recibida por URL.
func ParsePage(s string) (Page, bool) {
	for _, p := range Pages {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Title título mostrado en la cabecera.
func (p Page) Title() string { return pageTitles[p] }

// LoadsKind colección que se carga al entrar en la página (una sola llamada).
func (p Page) LoadsKind() (entity.Kind, bool) {
	switch p {
	case PageProducts:
		return entity.KindProducts, true
	case PageClients:
		return entity.KindClients, true
	case PageSettings:
		return entity.KindUsers, true
	default:
		return "", false
	}
}

// PageFor página que muestra la colección de un tipo.
func PageFor(kind entity.Kind) (Page, bool) {
	switch kind {
	case entity.KindProducts:
		return PageProducts, true
	case entity.KindClients:
		return PageClients, true
	case entity.KindUsers:
		return PageSettings, true
	default:
		return "", false
	}
}
