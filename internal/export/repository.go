package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario-app/internal/auth"
	"inventario-app/internal/database"
	"inventario-app/internal/models"
	"inventario-app/internal/remote"
	"inventario-app/internal/settings"
)

// Repository monta o conjunto de saída (produtos + contagens) e o envia
// ao ERP, ou grava o CSV local.
type Repository struct {
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
	api       *remote.InventoryAPI
	settings  *settings.Repository
}

func NewRepository(produtos *database.ProdutoStore, contagens *database.ContagemStore, api *remote.InventoryAPI, s *settings.Repository) *Repository {
	return &Repository{produtos: produtos, contagens: contagens, api: api, settings: s}
}

type Result struct {
	Filename   string
	TotalItens int
}

// ExportarCSV gera o arquivo local a partir do estado corrente do banco.
func (r *Repository) ExportarCSV(exportsDir, downloadsDir string) (string, error) {
	produtos, err := r.produtos.GetAll()
	if err != nil {
		return "", err
	}
	contagens, err := r.contagens.GetAll()
	if err != nil {
		return "", err
	}
	estoque, err := r.estoqueAtual()
	if err != nil {
		return "", err
	}
	return WriteCSV(produtos, contagens, exportsDir, downloadsDir, estoque, time.Now())
}

// ExportarParaERP envia a contagem corrente para POST /inventory/export.
// Um item por CONTAGEM (não por produto do catálogo); o ean da contagem
// tem precedência sobre o do produto. Falha de transporte/servidor aborta
// a operação inteira com a mensagem do backend.
func (r *Repository) ExportarParaERP(ctx context.Context) (*Result, error) {
	filial, err := r.settings.RequireActiveFilial()
	if err != nil {
		return nil, err
	}

	estoque, err := r.estoqueAtual()
	if err != nil {
		return nil, err
	}

	loja := strings.TrimSpace(filial.DBName)
	if loja == "" {
		loja = strings.TrimSpace(filial.Nome)
	}
	if loja == "" {
		loja = "desconhecida"
	}

	contagens, err := r.contagens.GetAll()
	if err != nil {
		return nil, err
	}
	if len(contagens) == 0 {
		return nil, errors.New("não há contagens para exportar")
	}

	produtos, err := r.produtos.GetAll()
	if err != nil {
		return nil, err
	}
	porID := make(map[int64]models.Produto, len(produtos))
	for _, p := range produtos {
		porID[p.ID] = p
	}

	items := make([]remote.ExportItem, 0, len(contagens))
	for _, c := range contagens {
		p, temProduto := porID[c.ProductID]

		eanOut := ""
		if c.EAN != nil {
			eanOut = *c.EAN
		} else if temProduto && p.EAN != nil {
			eanOut = *p.EAN
		}

		item := remote.ExportItem{
			ID:  c.ProductID,
			EAN: eanOut,
			Qty: c.Qty,
		}
		if temProduto {
			item.Nome = p.Nome
			item.UOM = p.UOM
			item.StqAtual = p.Stq
		}
		items = append(items, item)
	}

	filename := FileName("contagem", estoque, time.Now()) + ".json"
	payload := &remote.ExportPayload{
		Estoque:  estoque,
		Filename: filename,
		Loja:     loja,
		Items:    items,
	}

	apiToken, bearer, err := r.authHeaders(filial, estoque)
	if err != nil {
		return nil, err
	}

	if _, err := r.api.ExportInventory(ctx, payload, apiToken, bearer); err != nil {
		return nil, err
	}

	return &Result{Filename: filename, TotalItens: len(items)}, nil
}

// estoqueAtual: último tipo de estoque usado, com "loja" como padrão.
func (r *Repository) estoqueAtual() (string, error) {
	estoque, err := r.settings.LastEstoque()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(estoque) == "" {
		return "loja", nil
	}
	return estoque, nil
}

// authHeaders: filial com apiToken assina um bearer de aparelho com ele;
// sem apiToken valem os valores "dev" de desenvolvimento.
func (r *Repository) authHeaders(filial *models.FilialConfig, estoque string) (apiToken, bearer string, err error) {
	token := strings.TrimSpace(filial.APIToken)
	if token == "" {
		return "dev", "Bearer dev", nil
	}

	deviceID, err := r.settings.DeviceID()
	if err != nil {
		return "", "", err
	}
	assinado, err := auth.GenerateDeviceToken(token, deviceID, filial.ID, estoque)
	if err != nil {
		return "", "", fmt.Errorf("falha ao assinar o token do aparelho: %w", err)
	}
	return token, "Bearer " + assinado, nil
}
