package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFirebase = "firebase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	// Servidor
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	// Armazenamento
	StoreBackend string
	StoreRoot    string
	TenantScheme string

	// Firebase
	FirebaseCredentialsPath string
	FirebaseDatabaseURL     string
	FirebaseAPIKey          string

	// Usuários locais (email:senha,...) quando não há Firebase Auth
	AuthUsers string

	// Postgres
	DatabaseURL string

	// Sessões
	SessionIdleTimeoutMin int
	Timezone              string

	// Resumo diário
	DigestEnabled bool
	DigestCron    string

	// SMTP
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  Info: Ficheiro .env não encontrado ou não pôde ser carregado. Lendo variáveis de ambiente do sistema.")
	}

	environment := getEnvWithDefault("ENVIRONMENT", "development")
	defaultFormat := "text"
	if environment == "production" {
		defaultFormat = "json"
	}

	return &Config{
		// Servidor
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: environment,
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvWithDefault("LOG_FORMAT", defaultFormat),

		// Armazenamento
		StoreBackend: strings.ToLower(getEnvWithDefault("STORE_BACKEND", BackendFirebase)),
		StoreRoot:    getEnvWithDefault("STORE_ROOT", "units"),
		TenantScheme: strings.ToLower(getEnvWithDefault("TENANT_SCHEME", "email")),

		// Firebase
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		FirebaseDatabaseURL:     os.Getenv("FIREBASE_DATABASE_URL"),
		FirebaseAPIKey:          os.Getenv("FIREBASE_API_KEY"),
		AuthUsers:               os.Getenv("AUTH_USERS"),

		// Postgres
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Sessões
		SessionIdleTimeoutMin: getEnvInt("SESSION_IDLE_TIMEOUT_MIN", 240),
		Timezone:              getEnvWithDefault("TIMEZONE", "America/Sao_Paulo"),

		// Resumo diário
		DigestEnabled: getEnvBool("DIGEST_ENABLED", false),
		DigestCron:    getEnvWithDefault("DIGEST_CRON", "0 7 * * *"),

		// SMTP
		SMTPHost:      getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  getEnvWithDefault("SMTP_FROM_NAME", "OitivasPro"),
		SMTPFromEmail: getEnvWithDefault("SMTP_FROM_EMAIL", "nao-responda@oitivas.app"),
	}, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// Validate valida se todas as configurações obrigatórias estão presentes
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirebase:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
		}
		if c.FirebaseDatabaseURL == "" {
			return fmt.Errorf("FIREBASE_DATABASE_URL is required")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.TenantScheme != "email" && c.TenantScheme != "uid" {
		return fmt.Errorf("unknown TENANT_SCHEME %q", c.TenantScheme)
	}

	if c.StoreRoot == "" || strings.ContainsAny(c.StoreRoot, ".$#[]/") {
		return fmt.Errorf("STORE_ROOT must be a single path segment")
	}

	if c.FirebaseAPIKey == "" && c.AuthUsers == "" {
		log.Println("⚠️  Nem FIREBASE_API_KEY nem AUTH_USERS configurados: login por senha indisponível")
	}

	if c.DigestEnabled && (c.SMTPUsername == "" || c.SMTPPassword == "") {
		log.Println("⚠️  Resumo diário habilitado mas credenciais SMTP não configuradas")
	}

	return nil
}
