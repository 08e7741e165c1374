package settings

import (
	"os"
	"path/filepath"
	"testing"

	"inventario-app/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(filepath.Join(t.TempDir(), "settings.json"))
}

func TestPrimeiraExecucao(t *testing.T) {
	r := newTestRepo(t)

	id, err := r.CurrentID()
	if err != nil || id != "" {
		t.Fatalf("CurrentID em arquivo ausente = (%q, %v), esperado vazio", id, err)
	}
	filiais, err := r.Filiais()
	if err != nil || len(filiais) != 0 {
		t.Fatalf("Filiais em arquivo ausente = (%v, %v), esperado lista vazia", filiais, err)
	}
}

func TestPersistenciaFiliais(t *testing.T) {
	r := newTestRepo(t)

	filiais := []models.FilialConfig{
		{ID: "matriz", Nome: "Matriz", BackendURL: "http://192.168.15.11:8000", DBServer: "192.168.15.2", DBName: "matriz"},
		{ID: "centro", Nome: "Centro", BackendURL: "192.168.1.5:9000", DBServer: "192.168.1.9", DBName: "centro"},
	}
	if err := r.SetFiliais(filiais); err != nil {
		t.Fatalf("SetFiliais: %v", err)
	}
	if err := r.SetCurrentID("centro"); err != nil {
		t.Fatalf("SetCurrentID: %v", err)
	}
	if err := r.SetLastEstoque("deposito"); err != nil {
		t.Fatalf("SetLastEstoque: %v", err)
	}

	// outra instância relê o mesmo arquivo
	r2 := NewRepository(r.path)
	ativa, err := r2.ActiveFilial()
	if err != nil || ativa == nil || ativa.ID != "centro" {
		t.Fatalf("ActiveFilial = (%v, %v), esperado centro", ativa, err)
	}
	estoque, _ := r2.LastEstoque()
	if estoque != "deposito" {
		t.Errorf("LastEstoque = %q, esperado deposito", estoque)
	}
}

func TestPonteiroPendurado(t *testing.T) {
	r := newTestRepo(t)

	if err := r.SetFiliais([]models.FilialConfig{{ID: "a", Nome: "A"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCurrentID("removida"); err != nil {
		t.Fatal(err)
	}

	ativa, err := r.ActiveFilial()
	if err != nil || ativa != nil {
		t.Fatalf("id ativo pendurado deveria resolver para nil, veio (%v, %v)", ativa, err)
	}
	if _, err := r.RequireActiveFilial(); err == nil {
		t.Fatal("RequireActiveFilial deveria falhar com id pendurado")
	}
}

func TestFiliaisCorrompidasViramListaVazia(t *testing.T) {
	r := newTestRepo(t)
	if err := r.set(keyBranches, "{isso nao é json de lista"); err != nil {
		t.Fatal(err)
	}
	filiais, err := r.Filiais()
	if err != nil || len(filiais) != 0 {
		t.Fatalf("JSON corrompido deveria virar lista vazia, veio (%v, %v)", filiais, err)
	}
}

func TestDeviceIDEstavel(t *testing.T) {
	r := newTestRepo(t)
	a, err := r.DeviceID()
	if err != nil || a == "" {
		t.Fatalf("DeviceID: (%q, %v)", a, err)
	}
	b, _ := r.DeviceID()
	if a != b {
		t.Errorf("DeviceID mudou entre chamadas: %q != %q", a, b)
	}
}

func TestGravacaoAtomica(t *testing.T) {
	r := newTestRepo(t)
	if err := r.SetCurrentID("x"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(r.path + ".tmp"); !os.IsNotExist(err) {
		t.Error("arquivo temporário não deveria sobrar depois do save")
	}
}

func TestToSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Filial São João", "filial_sao_joao"},
		{"MATRIZ", "matriz"},
		{"Loja #2 - Centro", "loja_2_centro"},
		{"  ", "filial"},
		{"---", "filial"},
	}
	for _, tt := range tests {
		if got := ToSlug(tt.in); got != tt.want {
			t.Errorf("ToSlug(%q) = %q, esperado %q", tt.in, got, tt.want)
		}
	}
}
