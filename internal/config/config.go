package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Stripe   *StripeConfig   `mapstructure:"stripe"`
	Finance  *FinanceConfig  `mapstructure:"finance"`
	Cache    *CacheConfig    `mapstructure:"cache"`
	Media    *MediaConfig    `mapstructure:"media"`
	Schedule *ScheduleConfig `mapstructure:"schedule"`
}

type APIConfig struct {
	Port               string   `mapstructure:"port"`
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type StripeConfig struct {
	SecretKey       string `mapstructure:"secret_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	SuccessURL      string `mapstructure:"success_url"`
	CancelURL       string `mapstructure:"cancel_url"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

func (c *StripeConfig) Configured() bool {
	return c != nil && c.SecretKey != ""
}

type FinanceConfig struct {
	UseMaterializedView bool `mapstructure:"use_materialized_view"`
	RecentChargesLimit  int  `mapstructure:"recent_charges_limit"`
}

type CacheConfig struct {
	PaymentMethodTTL time.Duration `mapstructure:"payment_method_ttl"`
	RateLimitWindow  time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax     int           `mapstructure:"rate_limit_max"`
}

type MediaConfig struct {
	BucketDir     string `mapstructure:"bucket_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxWidth      int    `mapstructure:"max_width"`
}

type ScheduleConfig struct {
	Title string `mapstructure:"title"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"*"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "civeni")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.success_url", "http://localhost:5173/inscricao/sucesso?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("stripe.cancel_url", "http://localhost:5173/inscricao/cancelado")
	v.SetDefault("stripe.default_currency", "brl")
	v.SetDefault("finance.use_materialized_view", true)
	v.SetDefault("finance.recent_charges_limit", 100)
	v.SetDefault("cache.payment_method_ttl", 5*time.Minute)
	v.SetDefault("cache.rate_limit_window", time.Minute)
	v.SetDefault("cache.rate_limit_max", 10)
	v.SetDefault("media.bucket_dir", "./data/media")
	v.SetDefault("media.public_base_url", "http://localhost:8080/media")
	v.SetDefault("media.max_width", 1920)
	v.SetDefault("schedule.title", "CIVENI 2025 - Programação")
}

// Load reads the yml file at path. Every key can be overridden by an
// environment variable, e.g. CIVENI_STRIPE_SECRET_KEY.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("civeni")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed, restart to apply",
			zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}
