package database

import (
	"inventario-app/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContagemStore: persistência da contagem corrente.
// Como a PK é ProductID, o REPLACE faz o "upsert".
type ContagemStore struct {
	db *gorm.DB
}

func NewContagemStore(db *gorm.DB) *ContagemStore {
	return &ContagemStore{db: db}
}

func (s *ContagemStore) Upsert(c models.Contagem) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&c).Error
}

func (s *ContagemStore) GetAll() ([]models.Contagem, error) {
	var out []models.Contagem
	err := s.db.Find(&out).Error
	return out, err
}

func (s *ContagemStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&models.Contagem{}).Count(&n).Error
	return n, err
}

func (s *ContagemStore) ClearAll() error {
	return s.db.Exec("DELETE FROM contagens").Error
}
