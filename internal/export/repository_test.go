package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventario-app/internal/database"
	"inventario-app/internal/models"
	"inventario-app/internal/remote"
	"inventario-app/internal/routing"
	"inventario-app/internal/settings"
)

type erpFixture struct {
	repo      *Repository
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
	settings  *settings.Repository
}

func setupExportTest(t *testing.T, backendURL, apiToken string) *erpFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("falha ao abrir o banco de teste: %v", err)
	}
	if err := db.AutoMigrate(&models.Produto{}, &models.Contagem{}); err != nil {
		t.Fatalf("falha na migração: %v", err)
	}

	s := settings.NewRepository(filepath.Join(t.TempDir(), "settings.json"))
	u, _ := url.Parse(backendURL)
	if err := s.SetFiliais([]models.FilialConfig{{
		ID:         "teste",
		Nome:       "Filial de Teste",
		BackendURL: u.Host,
		DBServer:   "10.0.0.5",
		DBName:     "teste_db",
		APIToken:   apiToken,
	}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCurrentID("teste"); err != nil {
		t.Fatal(err)
	}

	produtos := database.NewProdutoStore(db)
	contagens := database.NewContagemStore(db)
	api := remote.NewInventoryAPI(routing.NewTransport(s), 5*time.Second)

	return &erpFixture{
		repo:      NewRepository(produtos, contagens, api, s),
		produtos:  produtos,
		contagens: contagens,
		settings:  s,
	}
}

func TestExportarParaERP(t *testing.T) {
	var recebido remote.ExportPayload
	var headers http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inventory/export" {
			http.NotFound(w, r)
			return
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&recebido); err != nil {
			t.Errorf("payload inválido: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remote.ExportResult{OK: true, TotalItens: len(recebido.Items)})
	}))
	defer ts.Close()

	f := setupExportTest(t, ts.URL, "")
	if err := f.settings.SetLastEstoque("deposito"); err != nil {
		t.Fatal(err)
	}

	eanProduto := "1111111111111"
	eanContagem := "2222222222222"
	if err := f.produtos.UpsertAll([]models.Produto{
		{ID: 1, EAN: &eanProduto, Nome: "Um", UOM: "UN", Stq: 10},
		{ID: 2, Nome: "Dois", UOM: "CX", Stq: 5},
		{ID: 3, Nome: "Nunca Contado", UOM: "UN", Stq: 7},
	}); err != nil {
		t.Fatal(err)
	}
	// contagem do produto 1 tem EAN próprio: tem precedência sobre o do produto
	if err := f.contagens.Upsert(models.Contagem{ProductID: 1, EAN: &eanContagem, Qty: 8, Ts: 1}); err != nil {
		t.Fatal(err)
	}
	if err := f.contagens.Upsert(models.Contagem{ProductID: 2, Qty: 3, Ts: 2}); err != nil {
		t.Fatal(err)
	}

	res, err := f.repo.ExportarParaERP(context.Background())
	if err != nil {
		t.Fatalf("export falhou: %v", err)
	}

	// um item por contagem, não por produto do catálogo
	if len(recebido.Items) != 2 || res.TotalItens != 2 {
		t.Fatalf("%d itens no payload, esperado 2", len(recebido.Items))
	}
	if recebido.Estoque != "deposito" {
		t.Errorf("estoque = %q, esperado deposito", recebido.Estoque)
	}
	if recebido.Loja != "teste_db" {
		t.Errorf("loja = %q, esperado o dbName da filial", recebido.Loja)
	}
	if !strings.HasPrefix(recebido.Filename, "contagem_deposito_") || !strings.HasSuffix(recebido.Filename, ".json") {
		t.Errorf("filename = %q", recebido.Filename)
	}

	porID := map[int64]remote.ExportItem{}
	for _, it := range recebido.Items {
		porID[it.ID] = it
	}
	if porID[1].EAN != eanContagem {
		t.Errorf("ean da contagem deveria ter precedência: %q", porID[1].EAN)
	}
	if porID[2].Nome != "Dois" || porID[2].StqAtual != 5 || porID[2].Qty != 3 {
		t.Errorf("item 2 = %+v", porID[2])
	}

	// filial sem apiToken usa as credenciais "dev"
	if headers.Get("X-Api-Token") != "dev" || headers.Get("Authorization") != "Bearer dev" {
		t.Errorf("credenciais dev esperadas, veio %q / %q", headers.Get("X-Api-Token"), headers.Get("Authorization"))
	}
	// e o transport injeta a identidade do banco
	if headers.Get("X-DB-Host") != "10.0.0.5" || headers.Get("X-DB-Name") != "teste_db" {
		t.Errorf("identidade do banco ausente: %q / %q", headers.Get("X-DB-Host"), headers.Get("X-DB-Name"))
	}
}

func TestExportarParaERPComTokenAssinaBearer(t *testing.T) {
	var headers http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remote.ExportResult{OK: true})
	}))
	defer ts.Close()

	f := setupExportTest(t, ts.URL, "segredo-da-filial")
	if err := f.produtos.UpsertAll([]models.Produto{{ID: 1, Nome: "Um", UOM: "UN"}}); err != nil {
		t.Fatal(err)
	}
	if err := f.contagens.Upsert(models.Contagem{ProductID: 1, Qty: 1, Ts: 1}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.repo.ExportarParaERP(context.Background()); err != nil {
		t.Fatalf("export falhou: %v", err)
	}

	if headers.Get("X-Api-Token") != "segredo-da-filial" {
		t.Errorf("X-Api-Token = %q", headers.Get("X-Api-Token"))
	}
	bearer := headers.Get("Authorization")
	if !strings.HasPrefix(bearer, "Bearer ") || bearer == "Bearer dev" {
		t.Errorf("bearer assinado esperado, veio %q", bearer)
	}
	// JWT: três segmentos separados por ponto
	if partes := strings.Split(strings.TrimPrefix(bearer, "Bearer "), "."); len(partes) != 3 {
		t.Errorf("bearer não parece um JWT: %q", bearer)
	}
}

func TestExportarParaERPSemContagens(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("nenhuma requisição deveria sair sem contagens")
	}))
	defer ts.Close()

	f := setupExportTest(t, ts.URL, "")
	_, err := f.repo.ExportarParaERP(context.Background())
	if err == nil || !strings.Contains(err.Error(), "contagens") {
		t.Fatalf("esperado erro 'não há contagens', veio %v", err)
	}
}

func TestExportarParaERPErroDoServidor(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tabela de contagem travada", http.StatusConflict)
	}))
	defer ts.Close()

	f := setupExportTest(t, ts.URL, "")
	if err := f.produtos.UpsertAll([]models.Produto{{ID: 1, Nome: "Um", UOM: "UN"}}); err != nil {
		t.Fatal(err)
	}
	if err := f.contagens.Upsert(models.Contagem{ProductID: 1, Qty: 1, Ts: 1}); err != nil {
		t.Fatal(err)
	}

	_, err := f.repo.ExportarParaERP(context.Background())
	if err == nil {
		t.Fatal("status não-2xx deveria virar erro")
	}
	// status e corpo aparecem na mensagem para exibição direta
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "travada") {
		t.Errorf("mensagem sem status/corpo: %v", err)
	}
}
