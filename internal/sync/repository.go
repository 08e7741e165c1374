// Package sync faz o PULL paginado do catálogo e grava no banco local.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventario-app/internal/database"
	"inventario-app/internal/ean"
	"inventario-app/internal/models"
	"inventario-app/internal/remote"
	"inventario-app/internal/settings"
)

const (
	nomeSentinela = "SEM NOME"
	uomPadrao     = "UN"
)

type Repository struct {
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
	api       *remote.InventoryAPI
	settings  *settings.Repository
}

func NewRepository(produtos *database.ProdutoStore, contagens *database.ContagemStore, api *remote.InventoryAPI, s *settings.Repository) *Repository {
	return &Repository{produtos: produtos, contagens: contagens, api: api, settings: s}
}

// PullAndSave sincroniza o catálogo inteiro da filial ativa.
//
// IMPORTANTE: como o app trabalha sempre com UMA filial/estoque ativo,
// produtos E contagens locais são limpos antes de importar. Sem retry:
// falha no meio da paginação deixa o catálogo local vazio e o chamador
// deve tratar como "catálogo vazio/desatualizado" e sincronizar de novo.
// Não é seguro rodar em paralelo consigo mesmo nem com a importação CSV.
//
// Retorna (processados da API, total no banco local depois de salvar).
func (r *Repository) PullAndSave(ctx context.Context, estoque string, pageSize int) (int, int64, error) {
	if _, _, err := r.activeDBHeaders(); err != nil {
		return 0, 0, err
	}

	if err := r.contagens.ClearAll(); err != nil {
		return 0, 0, fmt.Errorf("falha ao limpar contagens: %w", err)
	}
	if err := r.produtos.ClearAll(); err != nil {
		return 0, 0, fmt.Errorf("falha ao limpar o catálogo: %w", err)
	}

	offset := 0
	processed := 0

	for {
		resp, err := r.api.SyncInventory(ctx, estoque, pageSize, offset)
		if err != nil {
			return processed, 0, err
		}

		items := resp.Items
		if len(items) == 0 {
			break
		}

		lote := make([]models.Produto, 0, len(items))
		for _, dto := range items {
			lote = append(lote, mapProduto(dto))
		}

		if err := r.produtos.UpsertAll(lote); err != nil {
			return processed, 0, fmt.Errorf("falha ao gravar lote sincronizado: %w", err)
		}

		processed += len(items)
		offset += len(items)

		// página curta sinaliza fim dos dados, mesmo que o restante
		// fosse coincidentemente múltiplo do pageSize
		if len(items) < pageSize {
			break
		}
	}

	localCount, err := r.produtos.Count()
	if err != nil {
		return processed, 0, err
	}
	return processed, localCount, nil
}

// LocalCount: diagnóstico, conta quantos produtos existem no banco local.
func (r *Repository) LocalCount() (int64, error) {
	return r.produtos.Count()
}

func mapProduto(dto remote.CatalogItem) models.Produto {
	nome := strings.TrimSpace(dto.Nome)
	if nome == "" {
		nome = nomeSentinela
	}
	uom := uomPadrao
	if dto.UOM != nil && strings.TrimSpace(*dto.UOM) != "" {
		uom = strings.TrimSpace(*dto.UOM)
	}
	var stq float64
	if dto.Stq != nil {
		stq = *dto.Stq
	}
	var eanNorm *string
	if dto.EAN != nil {
		eanNorm = ean.NormalizeOrNil(*dto.EAN)
	}
	return models.Produto{
		ID:        dto.ID,
		EAN:       eanNorm,
		Nome:      nome,
		UOM:       uom,
		Stq:       stq,
		UpdatedAt: dto.UpdatedAt,
	}
}

// activeDBHeaders lê a filial ativa e devolve (dbServer, dbName).
// Os headers em si quem injeta é o routing.Transport; aqui o que importa
// é falhar cedo, com mensagem clara, quando a configuração está incompleta.
func (r *Repository) activeDBHeaders() (string, string, error) {
	filial, err := r.settings.RequireActiveFilial()
	if err != nil {
		return "", "", err
	}

	host := strings.TrimSpace(filial.DBServer)
	if host == "" {
		return "", "", errors.New("filial ativa não possui dbServer configurado")
	}
	name := strings.TrimSpace(filial.DBName)
	if name == "" {
		return "", "", errors.New("filial ativa não possui dbName configurado")
	}
	return host, name, nil
}
