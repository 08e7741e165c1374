package remote

// DTOs do contrato JSON do backend de inventário.
// Tudo opcional exceto o id; o backend evoluiu mantendo compatibilidade.

// ====== GET /inventory/sync

type CatalogItem struct {
	ID        int64    `json:"id"`
	EAN       *string  `json:"ean,omitempty"`
	Nome      string   `json:"nome"`
	UOM       *string  `json:"uom,omitempty"`
	Stq       *float64 `json:"stq,omitempty"`
	UpdatedAt *string  `json:"updated_at,omitempty"`
}

type CatalogResponse struct {
	Items []CatalogItem `json:"items"`
	Total *int          `json:"total,omitempty"`
	// o backend ecoa limit/offset na resposta; opcionais
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
}

// ====== POST /inventory/export

type ExportItem struct {
	ID       int64   `json:"id"`
	EAN      string  `json:"ean"`
	Nome     string  `json:"nome"`
	UOM      string  `json:"uom"`
	Qty      float64 `json:"qty"`
	StqAtual float64 `json:"stq_atual"`
}

type ExportPayload struct {
	Estoque  string       `json:"estoque"` // "loja" | "deposito"
	Filename string       `json:"filename,omitempty"`
	Loja     string       `json:"loja,omitempty"`
	Items    []ExportItem `json:"items"`
}

type ExportResult struct {
	OK         bool   `json:"ok"`
	Host       string `json:"host"`
	Database   string `json:"database"`
	ContagemID int64  `json:"contagem_id"`
	Filename   string `json:"filename"`
	TotalItens int    `json:"total_itens"`
}
