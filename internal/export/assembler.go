// Package export junta produtos e contagens e serializa o resultado:
// CSV local (um produto por linha) ou payload JSON para o ERP (um item
// contado por linha).
package export

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"inventario-app/internal/models"
)

var csvHeader = []string{"id", "nome", "uom", "ean", "estoque_importado", "qtd_contada"}

// Row: uma linha do CSV de exportação. Uma linha por produto do catálogo;
// QtdContada fica nil (coluna em branco) quando não houve contagem.
type Row struct {
	ID               int64
	Nome             string
	UOM              string
	EAN              string
	EstoqueImportado *float64
	QtdContada       *float64
}

func BuildRows(produtos []models.Produto, contagens []models.Contagem) []Row {
	porProduto := make(map[int64]models.Contagem, len(contagens))
	for _, c := range contagens {
		porProduto[c.ProductID] = c
	}

	rows := make([]Row, 0, len(produtos))
	for _, p := range produtos {
		stq := p.Stq
		row := Row{
			ID:               p.ID,
			Nome:             p.Nome,
			UOM:              p.UOM,
			EstoqueImportado: &stq,
		}
		if p.EAN != nil {
			row.EAN = *p.EAN
		}
		if c, ok := porProduto[p.ID]; ok {
			qty := c.Qty
			row.QtdContada = &qty
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderCSV serializa as linhas (UTF-8, separador ';', cabeçalho incluso).
func RenderCSV(rows []Row) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(csvHeader, ";"))
	sb.WriteByte('\n')
	for _, r := range rows {
		campos := []string{
			strconv.FormatInt(r.ID, 10),
			csvEscape(r.Nome),
			csvEscape(r.UOM),
			csvEscape(r.EAN),
			csvNumber(r.EstoqueImportado),
			csvNumber(r.QtdContada),
		}
		sb.WriteString(strings.Join(campos, ";"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteCSV gera o arquivo na pasta de exports e faz uma cópia best-effort
// na pasta de downloads, se configurada. Exportar sem nenhuma contagem é
// erro: nada de arquivo vazio silencioso. Devolve o caminho gravado.
func WriteCSV(produtos []models.Produto, contagens []models.Contagem, exportsDir, downloadsDir, estoque string, now time.Time) (string, error) {
	if len(contagens) == 0 {
		return "", errors.New("não há contagens para exportar")
	}

	conteudo := RenderCSV(BuildRows(produtos, contagens))
	nome := FileName("contagem", estoque, now) + ".csv"

	if err := os.MkdirAll(exportsDir, 0o755); err != nil {
		return "", fmt.Errorf("não foi possível criar a pasta de exports: %w", err)
	}
	path := filepath.Join(exportsDir, nome)
	if err := os.WriteFile(path, []byte(conteudo), 0o644); err != nil {
		return "", fmt.Errorf("não foi possível gravar o arquivo: %w", err)
	}

	// a cópia pública é best-effort: o artefato principal já existe,
	// falha aqui só gera log
	if downloadsDir != "" {
		if err := copyFile(path, filepath.Join(downloadsDir, nome)); err != nil {
			log.Printf("[WARN] cópia para a pasta de downloads falhou: %v", err)
		}
	}

	return path, nil
}

// FileName monta "prefixo_slugDoEstoque_yyyyMMdd_HHmmss" (sem extensão).
func FileName(prefixo, estoque string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", prefixo, estoqueSlug(estoque), now.Format("20060102_150405"))
}

// estoqueSlug: minúsculo, runs não alfanuméricos viram "_".
func estoqueSlug(estoque string) string {
	s := strings.ToLower(estoque)
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
		return "indefinido"
	}
	return out.String()
}

// csvNumber: inteiro sai sem casa decimal; fração usa ponto; nil em branco.
func csvNumber(v *float64) string {
	if v == nil {
		return ""
	}
	if *v == math.Trunc(*v) && !math.IsInf(*v, 0) {
		return strconv.FormatInt(int64(*v), 10)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// csvEscape envolve em aspas o campo que contém separador ou aspas,
// duplicando as aspas internas.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ";\"") {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
