package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir      string
	DatabasePath string
	SettingsPath string
	ExportsDir   string
	DownloadsDir string // cópia pública dos exports; vazio desativa
	PageSize     int    // tamanho de página do PULL do catálogo
	HTTPTimeout  time.Duration
}

func Load() *Config {
	// .env é opcional; em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	dataDir := getEnv("APP_DATA_DIR", "./data")

	cfg := &Config{
		DataDir:      dataDir,
		DatabasePath: getEnv("APP_DATABASE_PATH", filepath.Join(dataDir, "app.db")),
		SettingsPath: getEnv("APP_SETTINGS_PATH", filepath.Join(dataDir, "settings.json")),
		ExportsDir:   getEnv("APP_EXPORTS_DIR", filepath.Join(dataDir, "exports")),
		DownloadsDir: getEnv("APP_DOWNLOADS_DIR", ""),
		PageSize:     getEnvInt("APP_SYNC_PAGE_SIZE", 500),
		HTTPTimeout:  time.Duration(getEnvInt("APP_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if cfg.PageSize <= 0 {
		log.Fatal("[FATAL] APP_SYNC_PAGE_SIZE deve ser maior que zero.")
	}
	if cfg.DownloadsDir == "" {
		log.Println("[WARN] APP_DOWNLOADS_DIR não definido, a cópia pública dos exports fica desativada.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s=%q não é um inteiro, usando %d.", key, v, def)
		return def
	}
	return n
}
