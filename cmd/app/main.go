package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inventario-app/internal/config"
	"inventario-app/internal/contagem"
	"inventario-app/internal/database"
	"inventario-app/internal/export"
	"inventario-app/internal/importer"
	"inventario-app/internal/models"
	"inventario-app/internal/remote"
	"inventario-app/internal/routing"
	"inventario-app/internal/settings"
	syncrepo "inventario-app/internal/sync"
)

// app amarra as dependências na ordem do boot: config → banco local →
// preferências → transport roteado por filial → client do backend.
type app struct {
	cfg       *config.Config
	settings  *settings.Repository
	produtos  *database.ProdutoStore
	contagens *database.ContagemStore
	api       *remote.InventoryAPI
}

func buildApp() *app {
	cfg := config.Load()
	database.Init(cfg)

	s := settings.NewRepository(cfg.SettingsPath)
	return &app{
		cfg:       cfg,
		settings:  s,
		produtos:  database.NewProdutoStore(database.DB),
		contagens: database.NewContagemStore(database.DB),
		api:       remote.NewInventoryAPI(routing.NewTransport(s), cfg.HTTPTimeout),
	}
}

func main() {
	log.SetFlags(0)

	var cmdRoot = &cobra.Command{
		Use:   "inventario",
		Short: "Contagem de inventário por filial",
		Long:  "Sincroniza o catálogo da filial ativa, registra contagens e exporta o resultado em CSV ou direto para o ERP.",
	}
	cmdRoot.AddCommand(cmdSincronizar())
	cmdRoot.AddCommand(cmdImportar())
	cmdRoot.AddCommand(cmdExportar())
	cmdRoot.AddCommand(cmdContagem())
	cmdRoot.AddCommand(cmdFilial())

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// estoqueOuUltimo resolve o tipo de estoque: argumento explícito, senão o
// último usado, senão "loja".
func estoqueOuUltimo(a *app, args []string) (string, error) {
	if len(args) > 0 {
		tipo := strings.ToLower(strings.TrimSpace(args[0]))
		if tipo != "loja" && tipo != "deposito" {
			return "", fmt.Errorf("tipo de estoque inválido: %q (use loja ou deposito)", args[0])
		}
		return tipo, nil
	}
	ultimo, err := a.settings.LastEstoque()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ultimo) == "" {
		return "loja", nil
	}
	return ultimo, nil
}

func cmdSincronizar() *cobra.Command {
	var pageSize int
	cmd := &cobra.Command{
		Use:          "sincronizar [loja|deposito]",
		Short:        "Baixa o catálogo da filial ativa (limpa produtos e contagens locais)",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			estoque, err := estoqueOuUltimo(a, args)
			if err != nil {
				return err
			}
			if pageSize <= 0 {
				pageSize = a.cfg.PageSize
			}

			repo := syncrepo.NewRepository(a.produtos, a.contagens, a.api, a.settings)
			processed, localCount, err := repo.PullAndSave(context.Background(), estoque, pageSize)
			if err != nil {
				return err
			}
			if err := a.settings.SetLastEstoque(estoque); err != nil {
				return err
			}

			log.Printf("Sincronização concluída: %d itens processados, %d produtos no banco local.", processed, localCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "tamanho de página do PULL (padrão: APP_SYNC_PAGE_SIZE)")
	return cmd
}

func cmdImportar() *cobra.Command {
	limpar := true
	cmd := &cobra.Command{
		Use:          "importar <arquivo.csv>",
		Short:        "Importa o catálogo de um CSV (id;ean;nome;uom;stq[;updated_at])",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			im := importer.NewCsvImporter(a.produtos, a.contagens)

			prog, err := im.ImportFile(context.Background(), args[0], limpar, func(p importer.Progress) {
				log.Printf("... %d processados, %d gravados, %d pulados", p.Processed, p.Inserted, p.Skipped)
			})
			if err != nil {
				return err
			}

			log.Printf("Importação concluída: %d processados, %d gravados, %d pulados.", prog.Processed, prog.Inserted, prog.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&limpar, "limpar", true, "limpa produtos e contagens locais antes de importar")
	return cmd
}

func cmdExportar() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Exporta a contagem corrente",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "csv",
		Short:        "Gera o CSV local (e cópia na pasta de downloads, se configurada)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			repo := export.NewRepository(a.produtos, a.contagens, a.api, a.settings)
			path, err := repo.ExportarCSV(a.cfg.ExportsDir, a.cfg.DownloadsDir)
			if err != nil {
				return err
			}
			log.Printf("CSV gerado em %s", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "erp",
		Short:        "Envia a contagem para o ERP da filial ativa",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			repo := export.NewRepository(a.produtos, a.contagens, a.api, a.settings)
			res, err := repo.ExportarParaERP(context.Background())
			if err != nil {
				return err
			}
			log.Printf("Contagem enviada: %s (%d itens).", res.Filename, res.TotalItens)
			return nil
		},
	})

	return cmd
}

func cmdContagem() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contagem",
		Short: "Registra e consulta contagens",
	}

	var codigoEAN string
	var produtoID int64
	var qtd float64
	registrar := &cobra.Command{
		Use:          "registrar (--ean <codigo> | --produto <id>) --qtd <quantidade>",
		Short:        "Grava a contagem corrente de um produto (substitui a anterior)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (codigoEAN == "") == (produtoID == 0) {
				return fmt.Errorf("informe exatamente um entre --ean e --produto")
			}

			a := buildApp()
			repo := contagem.NewRepository(a.produtos, a.contagens)

			var p *models.Produto
			var err error
			if codigoEAN != "" {
				p, err = repo.RegistrarPorEAN(codigoEAN, qtd)
			} else {
				p, err = repo.RegistrarPorProduto(produtoID, qtd)
			}
			if err != nil {
				return err
			}

			log.Printf("Contagem registrada: %s (id %d) = %v %s", p.Nome, p.ID, qtd, p.UOM)
			return nil
		},
	}
	registrar.Flags().StringVar(&codigoEAN, "ean", "", "código de barras do produto")
	registrar.Flags().Int64Var(&produtoID, "produto", 0, "id do produto")
	registrar.Flags().Float64Var(&qtd, "qtd", 0, "quantidade contada")
	_ = registrar.MarkFlagRequired("qtd")
	cmd.AddCommand(registrar)

	cmd.AddCommand(&cobra.Command{
		Use:          "listar",
		Short:        "Lista as contagens correntes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			contagens, err := a.contagens.GetAll()
			if err != nil {
				return err
			}
			if len(contagens) == 0 {
				log.Println("Nenhuma contagem registrada.")
				return nil
			}
			for _, c := range contagens {
				eanStr := "-"
				if c.EAN != nil {
					eanStr = *c.EAN
				}
				fmt.Printf("%d\t%s\t%v\n", c.ProductID, eanStr, c.Qty)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "limpar",
		Short:        "Apaga todas as contagens",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			if err := a.contagens.ClearAll(); err != nil {
				return err
			}
			log.Println("Contagens apagadas.")
			return nil
		},
	})

	return cmd
}

func cmdFilial() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filial",
		Short: "Gerencia as filiais configuradas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "listar",
		Short:        "Lista as filiais e marca a ativa",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			filiais, err := a.settings.Filiais()
			if err != nil {
				return err
			}
			atual, err := a.settings.CurrentID()
			if err != nil {
				return err
			}
			if len(filiais) == 0 {
				log.Println("Nenhuma filial configurada.")
				return nil
			}
			for _, f := range filiais {
				marca := " "
				if f.ID == atual {
					marca = "*"
				}
				fmt.Printf("%s %s\t%s\t%s\t%s/%s\n", marca, f.ID, f.Nome, f.BackendURL, f.DBServer, f.DBName)
			}
			return nil
		},
	})

	var nome, backend, dbServer, dbName, apiToken string
	adicionar := &cobra.Command{
		Use:          "adicionar",
		Short:        "Adiciona (ou substitui) uma filial; o id é derivado do nome",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			nova := models.FilialConfig{
				ID:         settings.ToSlug(nome),
				Nome:       strings.TrimSpace(nome),
				BackendURL: strings.TrimSpace(backend),
				DBServer:   strings.TrimSpace(dbServer),
				DBName:     strings.TrimSpace(dbName),
				APIToken:   strings.TrimSpace(apiToken),
			}

			filiais, err := a.settings.Filiais()
			if err != nil {
				return err
			}
			substituida := false
			for i := range filiais {
				if filiais[i].ID == nova.ID {
					filiais[i] = nova
					substituida = true
					break
				}
			}
			if !substituida {
				filiais = append(filiais, nova)
			}
			if err := a.settings.SetFiliais(filiais); err != nil {
				return err
			}

			log.Printf("Filial %s salva. Use 'filial usar %s' para ativá-la.", nova.ID, nova.ID)
			return nil
		},
	}
	adicionar.Flags().StringVar(&nome, "nome", "", "nome de exibição da filial")
	adicionar.Flags().StringVar(&backend, "backend", "", "URL do backend (ex: http://192.168.15.11:8000)")
	adicionar.Flags().StringVar(&dbServer, "db-server", "", "host/IP do servidor de dados")
	adicionar.Flags().StringVar(&dbName, "db-name", "", "nome do banco de dados")
	adicionar.Flags().StringVar(&apiToken, "api-token", "", "token de API da filial (opcional)")
	_ = adicionar.MarkFlagRequired("nome")
	cmd.AddCommand(adicionar)

	cmd.AddCommand(&cobra.Command{
		Use:          "usar <id>",
		Short:        "Marca a filial ativa",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			filiais, err := a.settings.Filiais()
			if err != nil {
				return err
			}
			for _, f := range filiais {
				if f.ID == args[0] {
					if err := a.settings.SetCurrentID(f.ID); err != nil {
						return err
					}
					log.Printf("Filial ativa: %s (%s)", f.ID, f.Nome)
					return nil
				}
			}
			return fmt.Errorf("filial %q não encontrada", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "remover <id>",
		Short:        "Remove uma filial da lista",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildApp()
			filiais, err := a.settings.Filiais()
			if err != nil {
				return err
			}
			restantes := filiais[:0]
			removida := false
			for _, f := range filiais {
				if f.ID == args[0] {
					removida = true
					continue
				}
				restantes = append(restantes, f)
			}
			if !removida {
				return fmt.Errorf("filial %q não encontrada", args[0])
			}
			if err := a.settings.SetFiliais(restantes); err != nil {
				return err
			}
			// o ponteiro de filial ativa pode ficar pendurado de propósito:
			// o resto do app trata como "nenhuma filial ativa"
			log.Printf("Filial %s removida.", args[0])
			return nil
		},
	})

	return cmd
}
