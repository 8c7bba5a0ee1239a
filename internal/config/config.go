package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var ErrMissingPaymentConfig = errors.New("payment configuration is incomplete")

// Duration parses env as time.Duration: "10s", "5m" or a bare number of
// seconds ("10" is 10s).
type Duration time.Duration

func (d *Duration) SetValue(data string) error {
	v, err := parseDuration(data)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return 0, errors.New("empty duration")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(err, "duration must be like 10s, 5m or a number of seconds")
	}

	return d, nil
}

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Store   StoreConfig
	Cache   CacheConfig
	Payment PaymentConfig
}

type AppConfig struct {
	Env  string `env:"APP_ENV" env-default:"dev"`
	Name string `env:"APP_NAME" env-default:"Todo x402 Demo"`
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

type HTTPConfig struct {
	Port         string   `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

func (c HTTPConfig) Addr() string {
	return ":" + c.Port
}

type StoreConfig struct {
	DSN             string `env:"STORE_DSN" env-default:"file://data/todos.json"`
	TolerateCorrupt bool   `env:"STORE_TOLERATE_CORRUPT" env-default:"false"`
	Watch           bool   `env:"STORE_WATCH" env-default:"false"`
}

type CacheConfig struct {
	// 0 derives the budget from system memory, a negative value disables caching
	MaxBytes int64 `env:"CACHE_MAX_BYTES" env-default:"0"`
}

type PaymentConfig struct {
	Disabled           bool     `env:"PAYWALL_DISABLED" env-default:"false"`
	FacilitatorURL     string   `env:"FACILITATOR_URL"`
	FacilitatorTimeout Duration `env:"FACILITATOR_TIMEOUT" env-default:"30s"`
	EVMAddress         string   `env:"EVM_ADDRESS"`
	SVMAddress         string   `env:"SVM_ADDRESS"`
}

// Missing lists the payment variables that are not set.
func (c PaymentConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.FacilitatorURL) == "" {
		missing = append(missing, "FACILITATOR_URL")
	}

	if strings.TrimSpace(c.EVMAddress) == "" {
		missing = append(missing, "EVM_ADDRESS")
	}

	if strings.TrimSpace(c.SVMAddress) == "" {
		missing = append(missing, "SVM_ADDRESS")
	}

	return missing
}

// Load reads the environment after merging the given dotenv files into it.
// Files that do not exist are skipped; variables already set win.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return Config{}, errors.Wrapf(err, "could not load %s", f)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "read env")
	}

	if !cfg.Payment.Disabled {
		if missing := cfg.Payment.Missing(); len(missing) > 0 {
			return Config{}, errors.Wrapf(ErrMissingPaymentConfig, "%s required", strings.Join(missing, ", "))
		}
	}

	return cfg, nil
}

// Describe lists the environment variables the service reads.
func Describe() string {
	var cfg Config
	d, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}

	return d
}
