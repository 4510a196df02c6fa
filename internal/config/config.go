package config

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress string `json:"server_address"`
	BaseURL       string `json:"base_url"`
	DatabaseDSN   string `json:"database_dsn"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	SessionTTL    time.Duration
	SessionStore  string `json:"session_store"`
	EnableHTTPS   bool   `json:"enable_https"`
	TLSCertPath   string `json:"tls_cert_path"`
	TLSKeyPath    string `json:"tls_key_path"`
}

// NewConfig инициализирует конфигурацию на основе переменных окружения и флагов
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("SESSION_STORE", "redis")
	viper.SetDefault("ENABLE_HTTPS", false)
	viper.SetDefault("TLS_CERT_PATH", "cert.pem")
	viper.SetDefault("TLS_KEY_PATH", "key.pem")

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := flag.String("a", "", "server address")
	baseURL := flag.String("b", "", "base URL")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	redisAddr := flag.String("r", "", "Redis address")
	sessionStore := flag.String("session-store", "", "session store backend (redis|memory)")
	enableHTTPS := flag.Bool("s", false, "enable HTTPS")
	tlsCertPath := flag.String("cert", "", "path to TLS certificate")
	tlsKeyPath := flag.String("key", "", "path to TLS key")

	flag.Parse()

	cfg := &Config{
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		BaseURL:       viper.GetString("BASE_URL"),
		DatabaseDSN:   viper.GetString("DATABASE_DSN"),
		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),
		RedisDB:       viper.GetInt("REDIS_DB"),
		SessionTTL:    time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
		SessionStore:  viper.GetString("SESSION_STORE"),
		EnableHTTPS:   viper.GetBool("ENABLE_HTTPS"),
		TLSCertPath:   viper.GetString("TLS_CERT_PATH"),
		TLSKeyPath:    viper.GetString("TLS_KEY_PATH"),
	}

	// Если флаг передан, но переменной окружения нет — используем флаг
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if *sessionStore != "" {
		cfg.SessionStore = *sessionStore
	}

	// Включаем TLS
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}
	if *tlsCertPath != "" {
		cfg.TLSCertPath = *tlsCertPath
	}
	if *tlsKeyPath != "" {
		cfg.TLSKeyPath = *tlsKeyPath
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: RedisAddr=%s", cfg.RedisAddr)
	log.Printf("Инициализация конфигурации: SessionStore=%s", cfg.SessionStore)
	log.Printf("Инициализация конфигурации: SessionTTL=%s", cfg.SessionTTL)
	log.Printf("Инициализация конфигурации: EnableHTTPS=%v", cfg.EnableHTTPS)

	// Проверка корректности конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("адрес подключения к БД не может быть пустым")
	}
	if cfg.SessionStore != "redis" && cfg.SessionStore != "memory" {
		return fmt.Errorf("неизвестный тип хранилища сессий: %s", cfg.SessionStore)
	}
	return nil
}
