package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Drivers de armazenamento aceitos em STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config armazena todas as configurações do serviço FurniStock.
type Config struct {
	// Geral
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Armazenamento: "postgres" em produção, "memory" para desenvolvimento local (catálogo semeado).
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	DBTimeout    time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`
	SeedQuantity int           `env:"SEED_QUANTITY" envDefault:"10"`

	// Redis (rate limiting), ex.: "localhost:6379". Sem valor, as rotas ficam sem limitador.
	RedisAddr string `env:"REDIS_ADDR"`

	// Segurança (JWT)
	JWTSecretKey string `env:"JWT_SECRET_KEY,required,notEmpty"`

	// Rate Limiting
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitPeriod      time.Duration `env:"RATE_LIMIT_PERIOD" envDefault:"1m"`

	// Ajuste de estoque
	AdjustMaxRetries  uint64        `env:"ADJUST_MAX_RETRIES" envDefault:"3"`
	AdjustRetryBase   time.Duration `env:"ADJUST_RETRY_BASE" envDefault:"50ms"`
	LowStockThreshold int           `env:"LOW_STOCK_THRESHOLD" envDefault:"2"`

	// Eventos (Kafka). Sem brokers, os eventos não são publicados.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"furnistock.inventory.events"`
}

// Load carrega as configurações a partir das variáveis de ambiente e valida as combinações.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("erro de configuração: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("erro de configuração: DATABASE_URL deve ser definida quando STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("erro de configuração: STORE_DRIVER inválido %q (use %s ou %s)", c.StoreDriver, DriverPostgres, DriverMemory)
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("erro de configuração: DB_TIMEOUT deve ser positivo")
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitPeriod <= 0 {
		return fmt.Errorf("erro de configuração: rate limit exige RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD positivos")
	}
	if c.SeedQuantity < 0 {
		return fmt.Errorf("erro de configuração: SEED_QUANTITY não pode ser negativo")
	}
	return nil
}

// IsProduction informa se o serviço roda com ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
