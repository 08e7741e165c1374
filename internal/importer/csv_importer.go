package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"inventario-app/internal/database"
	"inventario-app/internal/ean"
	"inventario-app/internal/models"
)

const (
	batchSize  = 2000
	maxNomeLen = 120
	defaultUOM = "UN"
	separador  = ';'
)

// Progress: contadores emitidos a cada flush de lote e no fim do stream.
type Progress struct {
	Processed int
	Inserted  int
	Skipped   int
}

// CsvImporter lê um CSV de produtos (id;ean;nome;uom;stq[;updated_at],
// UTF-8, separador ';') e grava no banco local em lotes de 2000 linhas.
// A primeira linha é sempre tratada como cabeçalho e pulada.
type CsvImporter struct {
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
}

func NewCsvImporter(produtos *database.ProdutoStore, contagens *database.ContagemStore) *CsvImporter {
	return &CsvImporter{produtos: produtos, contagens: contagens}
}

// ImportFile abre o arquivo e delega para ImportReader.
// Falha na abertura é fatal: nenhum Progress é emitido.
func (im *CsvImporter) ImportFile(ctx context.Context, path string, clearBefore bool, onProgress func(Progress)) (Progress, error) {
	f, err := os.Open(path)
	if err != nil {
		return Progress{}, fmt.Errorf("não foi possível abrir o arquivo: %w", err)
	}
	defer f.Close()
	return im.ImportReader(ctx, f, clearBefore, onProgress)
}

// ImportReader faz a importação de fato. Linhas inválidas (id não numérico,
// nome em branco, quantidade não decimal, colunas de menos) contam como
// processadas E puladas e não abortam o stream. Cada lote gravado reporta
// progresso; o fim do stream grava o lote parcial e reporta uma última vez.
func (im *CsvImporter) ImportReader(ctx context.Context, r io.Reader, clearBefore bool, onProgress func(Progress)) (Progress, error) {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	if clearBefore {
		// mesmo reset destrutivo da sincronização: contagens primeiro,
		// depois o catálogo
		if err := im.contagens.ClearAll(); err != nil {
			return Progress{}, fmt.Errorf("falha ao limpar contagens: %w", err)
		}
		if err := im.produtos.ClearAll(); err != nil {
			return Progress{}, fmt.Errorf("falha ao limpar o catálogo: %w", err)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	headerRead := false
	batch := make([]models.Produto, 0, batchSize)
	var prog Progress

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.produtos.UpsertAll(batch); err != nil {
			return fmt.Errorf("falha ao gravar lote de produtos: %w", err)
		}
		prog.Inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if !headerRead {
			headerRead = true // pula cabeçalho
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue // linha em branco não conta como processada
		}

		cols := ParseLine(line, separador)

		// Esperado: id;ean;nome;uom;stq;updated_at(opcional)
		if len(cols) < 5 {
			prog.Skipped++
			prog.Processed++
			continue
		}

		id, errID := strconv.ParseInt(strings.TrimSpace(cols[0]), 10, 64)
		nome := strings.TrimSpace(cols[2])
		stq, okStq := ParseDecimal(cols[4])

		if errID != nil || nome == "" || !okStq {
			prog.Skipped++
			prog.Processed++
			continue
		}

		uom := strings.TrimSpace(cols[3])
		if uom == "" {
			uom = defaultUOM
		}

		var updatedAt *string
		if len(cols) > 5 {
			if v := strings.TrimSpace(cols[5]); v != "" {
				updatedAt = &v
			}
		}

		if nr := []rune(nome); len(nr) > maxNomeLen {
			nome = string(nr[:maxNomeLen])
		}

		batch = append(batch, models.Produto{
			ID:        id,
			EAN:       ean.NormalizeOrNil(cols[1]),
			Nome:      nome,
			UOM:       uom,
			Stq:       stq,
			UpdatedAt: updatedAt,
		})

		prog.Processed++
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return prog, err
			}
			onProgress(prog)
			// ponto de cooperação entre lotes
			if err := ctx.Err(); err != nil {
				return prog, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return prog, fmt.Errorf("falha lendo o arquivo: %w", err)
	}

	// lote final, mesmo abaixo do limite, e um último report
	if err := flush(); err != nil {
		return prog, err
	}
	onProgress(prog)

	return prog, nil
}
