package database

import (
	"errors"

	"inventario-app/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lotes grandes são quebrados em sub-lotes dentro de UMA transação:
// ou o lote inteiro entra, ou o chamador vê o erro
const upsertBatchSize = 500

// ProdutoStore: persistência do catálogo local (upsert por chave REPLACE).
type ProdutoStore struct {
	db *gorm.DB
}

func NewProdutoStore(db *gorm.DB) *ProdutoStore {
	return &ProdutoStore{db: db}
}

func (s *ProdutoStore) UpsertAll(produtos []models.Produto) error {
	if len(produtos) == 0 {
		return nil
	}
	return s.db.
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&produtos, upsertBatchSize).Error
}

func (s *ProdutoStore) ClearAll() error {
	return s.db.Exec("DELETE FROM products").Error
}

func (s *ProdutoStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&models.Produto{}).Count(&n).Error
	return n, err
}

func (s *ProdutoStore) GetAll() ([]models.Produto, error) {
	var out []models.Produto
	err := s.db.Order("nome").Find(&out).Error
	return out, err
}

// GetByEAN devolve (nil, nil) quando não há produto com esse código.
func (s *ProdutoStore) GetByEAN(ean string) (*models.Produto, error) {
	var p models.Produto
	err := s.db.Where("ean = ?", ean).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID devolve (nil, nil) quando não há produto com esse id.
func (s *ProdutoStore) GetByID(id int64) (*models.Produto, error) {
	var p models.Produto
	err := s.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
