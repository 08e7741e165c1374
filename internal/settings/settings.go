// Package settings guarda as preferências persistidas do app: a lista de
// filiais, o ponteiro de filial ativa e o último tipo de estoque usado.
// É o equivalente de um preference store chave/valor: sobrevive a restart
// e está ausente na primeira execução.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"inventario-app/internal/models"
)

const (
	keyCurrentID   = "current_branch_id"
	keyBranches    = "branches_json"
	keyLastEstoque = "last_estoque_tipo"
	keyDeviceID    = "device_id"
)

// Repository persiste pares chave/valor num arquivo JSON.
// Cada leitura relê o arquivo: quem alterar as configurações vê o efeito
// na próxima operação, sem cache e sem restart.
type Repository struct {
	path string
	mu   sync.Mutex
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("não foi possível ler as configurações: %w", err)
	}
	prefs := map[string]string{}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("arquivo de configurações inválido: %w", err)
	}
	return prefs, nil
}

// save grava via arquivo temporário + rename para nunca deixar o
// arquivo de preferências pela metade.
func (r *Repository) save(prefs map[string]string) error {
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("não foi possível criar a pasta de configurações: %w", err)
		}
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("não foi possível gravar as configurações: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func (r *Repository) get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefs, err := r.load()
	if err != nil {
		return "", err
	}
	return prefs[key], nil
}

func (r *Repository) set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefs, err := r.load()
	if err != nil {
		return err
	}
	if value == "" {
		delete(prefs, key)
	} else {
		prefs[key] = value
	}
	return r.save(prefs)
}

// CurrentID: id da filial ativa ("" se nenhuma selecionada).
func (r *Repository) CurrentID() (string, error) {
	return r.get(keyCurrentID)
}

func (r *Repository) SetCurrentID(id string) error {
	return r.set(keyCurrentID, id)
}

// LastEstoque: tipo de estoque usado por último ("loja" ou "deposito").
func (r *Repository) LastEstoque() (string, error) {
	return r.get(keyLastEstoque)
}

func (r *Repository) SetLastEstoque(tipo string) error {
	return r.set(keyLastEstoque, tipo)
}

// Filiais: lista de filiais configuradas. JSON corrompido vira lista
// vazia, não erro — igual ao resto do app, dado degradado é aceito.
func (r *Repository) Filiais() ([]models.FilialConfig, error) {
	raw, err := r.get(keyBranches)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []models.FilialConfig{}, nil
	}
	var filiais []models.FilialConfig
	if err := json.Unmarshal([]byte(raw), &filiais); err != nil {
		return []models.FilialConfig{}, nil
	}
	return filiais, nil
}

func (r *Repository) SetFiliais(filiais []models.FilialConfig) error {
	data, err := json.Marshal(filiais)
	if err != nil {
		return err
	}
	return r.set(keyBranches, string(data))
}

// DeviceID identifica o aparelho nos exports; gerado uma vez e persistido.
func (r *Repository) DeviceID() (string, error) {
	id, err := r.get(keyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := r.set(keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

// ActiveFilial resolve a filial ativa. Sem id ativo, ou com o ponteiro
// apontando para uma filial já removida, devolve (nil, nil).
func (r *Repository) ActiveFilial() (*models.FilialConfig, error) {
	currentID, err := r.CurrentID()
	if err != nil {
		return nil, err
	}
	if currentID == "" {
		return nil, nil
	}
	filiais, err := r.Filiais()
	if err != nil {
		return nil, err
	}
	for i := range filiais {
		if filiais[i].ID == currentID {
			return &filiais[i], nil
		}
	}
	return nil, nil
}

// RequireActiveFilial é a variante usada por sync/export: erro de
// configuração é fatal e descritivo, o usuário precisa corrigir as
// configurações antes de tentar de novo.
func (r *Repository) RequireActiveFilial() (*models.FilialConfig, error) {
	currentID, err := r.CurrentID()
	if err != nil {
		return nil, err
	}
	if currentID == "" {
		return nil, errors.New("nenhuma filial ativa nas configurações")
	}
	filiais, err := r.Filiais()
	if err != nil {
		return nil, err
	}
	for i := range filiais {
		if filiais[i].ID == currentID {
			return &filiais[i], nil
		}
	}
	return nil, fmt.Errorf("filial ativa (%s) não encontrada na lista de filiais", currentID)
}

// ToSlug deriva o id de uma filial a partir do nome: sem acentos,
// minúsculo, runs não alfanuméricos viram "_".
func ToSlug(nome string) string {
	decomposed := norm.NFD.String(nome)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.ToLower(b.String())

	var out strings.Builder
	pendingSep := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingSep && out.Len() > 0 {
				out.WriteByte('_')
			}
			pendingSep = false
			out.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	if out.Len() == 0 {
		return "filial"
	}
	return out.String()
}
