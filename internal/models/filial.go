package models

// FilialConfig aponta para o backend e o banco de dados de uma filial.
// Persistida como lista serializada nas preferências, não no banco local.
// A filial "ativa" é um ponteiro de id guardado à parte; ele pode referenciar
// uma filial já removida (tratado como "nenhuma filial ativa").
type FilialConfig struct {
	ID         string `json:"id"`         // único, derivado do nome (slug) quando não explícito
	Nome       string `json:"nome"`       // rótulo de exibição
	BackendURL string `json:"backendUrl"` // ex: "http://192.168.15.11:8000/"
	DBServer   string `json:"dbServer"`   // host/IP do servidor de dados
	DBName     string `json:"dbName"`     // nome do banco de dados
	APIToken   string `json:"apiToken"`   // opcional
}
