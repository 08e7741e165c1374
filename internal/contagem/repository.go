// Package contagem guarda a contagem corrente por produto.
package contagem

import (
	"errors"
	"fmt"
	"time"

	"inventario-app/internal/database"
	"inventario-app/internal/ean"
	"inventario-app/internal/models"
)

type Repository struct {
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
}

func NewRepository(produtos *database.ProdutoStore, contagens *database.ContagemStore) *Repository {
	return &Repository{produtos: produtos, contagens: contagens}
}

// RegistrarPorEAN localiza o produto pelo código de barras (normalizado
// com a mesma função da importação/sincronização) e grava a quantidade
// contada. Devolve o produto para a tela exibir.
func (r *Repository) RegistrarPorEAN(codigo string, qty float64) (*models.Produto, error) {
	norm := ean.Normalize(codigo)
	if norm == "" {
		return nil, errors.New("código de barras sem dígitos")
	}
	p, err := r.produtos.GetByEAN(norm)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("nenhum produto com EAN %s no catálogo local", norm)
	}
	if err := r.upsert(p, qty); err != nil {
		return nil, err
	}
	return p, nil
}

// RegistrarPorProduto grava a contagem pelo id do produto (digitação manual).
func (r *Repository) RegistrarPorProduto(productID int64, qty float64) (*models.Produto, error) {
	p, err := r.produtos.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("produto %d não encontrado no catálogo local", productID)
	}
	if err := r.upsert(p, qty); err != nil {
		return nil, err
	}
	return p, nil
}

// upsert substitui a contagem anterior do produto (REPLACE por ProductID).
func (r *Repository) upsert(p *models.Produto, qty float64) error {
	return r.contagens.Upsert(models.Contagem{
		ProductID: p.ID,
		EAN:       p.EAN,
		Qty:       qty,
		Ts:        time.Now().UnixMilli(),
	})
}

func (r *Repository) GetAll() ([]models.Contagem, error) {
	return r.contagens.GetAll()
}

func (r *Repository) GetMap() (map[int64]models.Contagem, error) {
	all, err := r.contagens.GetAll()
	if err != nil {
		return nil, err
	}
	m := make(map[int64]models.Contagem, len(all))
	for _, c := range all {
		m[c.ProductID] = c
	}
	return m, nil
}

func (r *Repository) ClearAll() error {
	return r.contagens.ClearAll()
}
