// Package routing torna as requisições de saída cientes da filial ativa,
// sem que os call sites precisem passar filial nenhuma.
package routing

import (
	"net/http"
	"net/url"
	"strings"

	"inventario-app/internal/settings"
)

// Transport é um http.RoundTripper que, a cada requisição:
//   - relê a filial ativa nas configurações (sem cache: mudança de
//     configuração vale já na próxima requisição, sem restart)
//   - reescreve scheme/host/port da URL para o backendUrl da filial
//     (caminho, query e body ficam intactos)
//   - injeta X-DB-Host e X-DB-Name com dbServer/dbName da filial
//
// Só esses dois headers pertencem a este componente; o resto do que o
// chamador setou fica como está. Sem filial resolvida, a requisição
// segue sem nenhuma alteração.
type Transport struct {
	Settings *settings.Repository
	Base     http.RoundTripper // nil usa http.DefaultTransport
}

func NewTransport(s *settings.Repository) *Transport {
	return &Transport{Settings: s}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	filial, err := t.Settings.ActiveFilial()
	if err != nil || filial == nil {
		return t.base().RoundTrip(req)
	}

	out := req.Clone(req.Context())

	if base := ParseBackendURL(filial.BackendURL); base != nil {
		out.URL.Scheme = base.Scheme
		out.URL.Host = base.Host
		out.Host = "" // o header Host segue a URL reescrita
	}

	if host := strings.TrimSpace(filial.DBServer); host != "" {
		out.Header.Set("X-DB-Host", host)
	}
	if name := strings.TrimSpace(filial.DBName); name != "" {
		out.Header.Set("X-DB-Name", name)
	}

	return t.base().RoundTrip(out)
}

// ParseBackendURL normaliza o backendUrl da filial: sem scheme ganha
// "http://"; vazio (ou inválido) significa "sem override de base".
func ParseBackendURL(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}
