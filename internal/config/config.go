package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // imágenes mínimas sin zoneinfo

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backends de almacenamiento soportados
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config contiene la configuración de la aplicación
type Config struct {
	HTTPAddr string // Dirección del servidor HTTP
	LogLevel string

	StoreBackend   string // cotizaciones: postgres, sqlite o memory
	CounterBackend string // consecutivo: postgres, redis, sqlite o memory

	DBHost     string // Host de PostgreSQL
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLitePath string

	SequencerMaxAttempts int           // Intentos del almacén ante conflictos de escritura
	SequencerTimeout     time.Duration // Tiempo máximo de una asignación

	JWTSecret         string
	TokenExpiry       time.Duration
	AdminUser         string
	AdminPasswordHash string // hash bcrypt

	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	EmailEnabled       bool
	InsecureSkipVerify bool
	SalesInbox         string // buzón que recibe las cotizaciones

	RateLimitPerMinute int
	TrustedProxies     []netip.Prefix // vacío = X-Forwarded-For se ignora

	Location *time.Location // zona del negocio: año del consecutivo y día del resumen

	CatalogPath       string
	CatalogReloadCron string // vacío = sin recarga programada
	SummaryCron       string
}

// LoadConfig carga la configuración desde el archivo .env
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Archivo .env no encontrado, se usan variables de entorno")
	}

	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = 12 * time.Hour
	}

	seqTimeout, err := time.ParseDuration(os.Getenv("SEQUENCER_TIMEOUT"))
	if err != nil {
		seqTimeout = 5 * time.Second
	}

	storeBackend := getEnv("STORE_BACKEND", BackendPostgres)

	location, err := time.LoadLocation(getEnv("TIMEZONE", "America/Bogota"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	trustedProxies, err := parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	config := &Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		StoreBackend:         storeBackend,
		CounterBackend:       getEnv("COUNTER_BACKEND", storeBackend),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", "postgres"),
		DBName:               getEnv("DB_NAME", "tienda_motos"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		SQLitePath:           getEnv("SQLITE_PATH", "data/tienda_motos.db"),
		SequencerMaxAttempts: getEnvInt("SEQUENCER_MAX_ATTEMPTS", 5),
		SequencerTimeout:     seqTimeout,
		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry:          expiry,
		AdminUser:            getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             os.Getenv("SMTP_USER"),
		SMTPPass:             os.Getenv("SMTP_PASS"),
		EmailEnabled:         os.Getenv("EMAIL_SENDER_ENABLED") == "true",
		InsecureSkipVerify:   os.Getenv("INSECURE_SKIP_VERIFY") == "true",
		SalesInbox:           os.Getenv("SALES_INBOX"),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:       trustedProxies,
		Location:             location,
		CatalogPath:          getEnv("CATALOG_PATH", "config/catalog.yaml"),
		CatalogReloadCron:    os.Getenv("CATALOG_RELOAD_CRON"),
		SummaryCron:          getEnv("SUMMARY_CRON", "0 20 * * *"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q not supported", c.StoreBackend)
	}
	switch c.CounterBackend {
	case BackendPostgres, BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("COUNTER_BACKEND %q not supported", c.CounterBackend)
	}
	if c.SequencerMaxAttempts < 1 {
		return fmt.Errorf("SEQUENCER_MAX_ATTEMPTS must be at least 1")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// PostgresDSN cadena de conexión para lib/pq
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// parsePrefixes lista separada por comas de CIDR o IP sueltas
func parsePrefixes(value string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			addr, err := netip.ParseAddr(item)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(item)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// getEnv obtiene la variable de entorno o el valor por defecto
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
