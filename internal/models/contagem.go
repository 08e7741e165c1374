package models

// Contagem corrente por produto. ProductID é a chave primária:
// uma nova contagem para o mesmo produto substitui a anterior
// (é o "saldo atual" da contagem, não um histórico).
type Contagem struct {
	ProductID int64   `gorm:"primaryKey"`
	EAN       *string `gorm:"size:14"` // cópia desnormalizada, facilita export e conferência
	Qty       float64 `gorm:"not null"`
	Ts        int64   `gorm:"not null"` // epoch millis do registro
}

func (Contagem) TableName() string { return "contagens" }
