package models

// Produto: item do catálogo sincronizado do backend (ou importado via CSV).
// Reimportar com o mesmo ID substitui o registro inteiro (REPLACE, não merge).
type Produto struct {
	ID        int64   `gorm:"primaryKey"`
	EAN       *string `gorm:"size:14;index"` // dígitos normalizados (13 quando possível)
	Nome      string  `gorm:"size:120;not null"`
	UOM       string  `gorm:"size:20;not null;default:UN"` // unidade de medida
	Stq       float64 `gorm:"not null;default:0"`          // estoque importado
	UpdatedAt *string `gorm:"size:40"`                     // timestamp opaco do sistema de origem
}

func (Produto) TableName() string { return "products" }
