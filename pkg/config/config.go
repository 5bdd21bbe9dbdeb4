package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Políticas para documentos "pagar ahora".
const (
	PayNowSettle   = "settle"    // estado Pagada, sin vencimiento
	PayNowDueToday = "due_today" // estado Emitida, vence el día de emisión
)

// Drivers de almacenamiento.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	Billing BillingConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Storage  string // postgres | memory
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	ForceIPv4   bool   // resolver el host a IPv4 (contenedores sin IPv6)
	TimeZone    string // zona de la sesión; igual a BILLING_TIMEZONE para que las fechas del reporte calcen
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT (el token lo emite el proveedor de sesión).
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configuración del almacén de claves de idempotencia. Addr vacío = deshabilitado.
type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

// BillingConfig reglas de facturación inyectadas en pedidos y documentos.
type BillingConfig struct {
	TaxRate      decimal.Decimal // IVA, 0.19
	FolioSeed    int64           // primer folio de cada serie
	PayNowPolicy string          // settle | due_today
	Timezone     string          // zona horaria para fechas de emisión y vencimiento
	CompanyName  string          // razón social impresa en boletas y facturas
}

// Location carga la zona horaria configurada (UTC si no existe).
func (c BillingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, BILLING_TAX_RATE, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // opcional

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	taxRate, err := decimal.NewFromString(getString(v, "BILLING_TAX_RATE", "0.19"))
	if err != nil {
		return nil, fmt.Errorf("BILLING_TAX_RATE inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ticashop-backoffice"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Storage:  getString(v, "STORAGE_DRIVER", StoragePostgres),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ticashop"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
			MinConns:    int32(getInt(v, "DB_MIN_CONNS", 2)),
			ForceIPv4:   getString(v, "DB_FORCE_IPV4", "true") == "true",
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "ticashop"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Addr:           getString(v, "REDIS_ADDR", ""),
			IdempotencyTTL: time.Duration(getInt(v, "REDIS_IDEMPOTENCY_TTL_MINUTES", 60*24)) * time.Minute,
		},
		Billing: BillingConfig{
			TaxRate:      taxRate,
			FolioSeed:    int64(getInt(v, "BILLING_FOLIO_SEED", 1000)),
			PayNowPolicy: getString(v, "BILLING_PAY_NOW_POLICY", PayNowSettle),
			Timezone:     getString(v, "BILLING_TIMEZONE", "America/Santiago"),
			CompanyName:  getString(v, "BILLING_COMPANY_NAME", "Ticashop"),
		},
	}

	cfg.DB.TimeZone = cfg.Billing.Timezone

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Billing.TaxRate.IsNegative() || c.Billing.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("BILLING_TAX_RATE debe estar en [0, 1): %s", c.Billing.TaxRate)
	}
	if c.Billing.FolioSeed <= 0 {
		return fmt.Errorf("BILLING_FOLIO_SEED debe ser positivo")
	}
	switch c.Billing.PayNowPolicy {
	case PayNowSettle, PayNowDueToday:
	default:
		return fmt.Errorf("BILLING_PAY_NOW_POLICY desconocida: %q", c.Billing.PayNowPolicy)
	}
	if c.DB.MaxConns <= 0 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS inválidos: %d/%d", c.DB.MinConns, c.DB.MaxConns)
	}
	switch c.App.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER desconocido: %q", c.App.Storage)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
