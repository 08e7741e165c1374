package database

import (
	"log"
	"os"
	"path/filepath"

	"inventario-app/internal/config"
	"inventario-app/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Não foi possível criar a pasta de dados %s: %v", dir, err)
		}
	}

	DB, err = gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Não foi possível abrir o banco local: %v", err)
	}

	if err := DB.AutoMigrate(&models.Produto{}, &models.Contagem{}); err != nil {
		log.Fatalf("Migração do banco local falhou: %v", err)
	}
}
