package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// InventoryAPI é o cliente tipado do backend de inventário. A base real
// da URL e os headers X-DB-Host/X-DB-Name vêm do routing.Transport
// instalado no client; aqui entram só caminho, query e autenticação.
type InventoryAPI struct {
	client *resty.Client
}

// NewInventoryAPI monta o client sobre o transport de roteamento por
// filial. A base URL é um placeholder: sem filial ativa para reescrever
// a base, a requisição falha — e a sincronização já terá falhado antes,
// na validação de configuração.
func NewInventoryAPI(transport http.RoundTripper, timeout time.Duration) *InventoryAPI {
	client := resty.New().
		SetTransport(transport).
		SetTimeout(timeout).
		SetBaseURL("http://localhost")
	return &InventoryAPI{client: client}
}

// SyncInventory busca uma página do catálogo (GET /inventory/sync).
// Lista vazia ou curta sinaliza fim da paginação; quem decide é o chamador.
func (a *InventoryAPI) SyncInventory(ctx context.Context, estoque string, limit, offset int) (*CatalogResponse, error) {
	var out CatalogResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("estoque", estoque).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetResult(&out).
		Get("/inventory/sync")
	if err != nil {
		return nil, fmt.Errorf("falha na sincronização: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("erro ao sincronizar inventário: %d - %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

// ExportInventory envia a contagem para o ERP (POST /inventory/export).
// apiToken vai em X-Api-Token; bearer vai em Authorization, quando presentes.
// Resposta não-2xx vira erro com status e corpo, para exibição direta.
func (a *InventoryAPI) ExportInventory(ctx context.Context, payload *ExportPayload, apiToken, bearer string) (*ExportResult, error) {
	var out ExportResult
	req := a.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out)
	if apiToken != "" {
		req.SetHeader("X-Api-Token", apiToken)
	}
	if bearer != "" {
		req.SetHeader("Authorization", bearer)
	}
	resp, err := req.Post("/inventory/export")
	if err != nil {
		return nil, fmt.Errorf("falha ao exportar inventário: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("erro ao exportar inventário: %d - %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}
