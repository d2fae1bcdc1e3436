package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/constants"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	TimeZone  string `mapstructure:"timezone"   json:"timezone"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Driver         string `mapstructure:"driver"          json:"driver"`
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string        `mapstructure:"host"     json:"host"`
	Password string        `mapstructure:"password" json:"-"`
	Database int           `mapstructure:"database" json:"database"`
	Port     uint16        `mapstructure:"port"     json:"port"`
	TTL      time.Duration `mapstructure:"ttl"      json:"ttl"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Session struct {
	CookieName string        `mapstructure:"cookie_name" json:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"         json:"ttl"`
}

type Checkout struct {
	PaymentMethod string  `mapstructure:"payment_method" json:"payment_method"`
	Surcharge     float64 `mapstructure:"surcharge"      json:"surcharge"`
}

type Dashboard struct {
	Timeout      time.Duration `mapstructure:"timeout"       json:"timeout"`
	TopProducts  int           `mapstructure:"top_products"  json:"top_products"`
	RecentOrders int           `mapstructure:"recent_orders" json:"recent_orders"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins"`
}

type Event struct {
	Channel string `mapstructure:"channel" json:"channel"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Session     `mapstructure:"session"     json:"session"`
	Checkout    `mapstructure:"checkout"    json:"checkout"`
	Dashboard   `mapstructure:"dashboard"   json:"dashboard"`
	Cors        `mapstructure:"cors"        json:"cors"`
	Event       `mapstructure:"event"       json:"event"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults() {
	viper.SetDefault("application.env", "development")
	viper.SetDefault("application.host", "0.0.0.0")
	viper.SetDefault("application.port", 8080)
	viper.SetDefault("application.timezone", "Local")
	viper.SetDefault("db.driver", "postgres")
	viper.SetDefault("db.migration_path", "file://migrations")
	viper.SetDefault("db.max_connections", 10)
	viper.SetDefault("db.min_connections", 2)
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("otel.host", "otel-collector")
	viper.SetDefault("otel.port", 4317)
	viper.SetDefault("session.cookie_name", "session")
	viper.SetDefault("session.ttl", 24*time.Hour)
	viper.SetDefault("checkout.payment_method", "Cash on Delivery")
	viper.SetDefault("checkout.surcharge", 7)
	viper.SetDefault("dashboard.timeout", 10*time.Second)
	viper.SetDefault("dashboard.top_products", 5)
	viper.SetDefault("dashboard.recent_orders", 5)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("event.channel", "orders")
}

func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(constants.KeyTag, "config Get").
			Str(constants.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		setDefaults()
		viper.SetConfigName(filename)
		viper.AddConfigPath("./env")
		viper.SetConfigType("yaml")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		logger = logger.With().Str(constants.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := viper.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(constants.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = viper.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(constants.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}

// Location resolves the configured timezone used for calendar day boundaries.
func (a Application) Location() (*time.Location, error) {
	if a.TimeZone == "" || a.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed loading timezone=%s with error=%w", a.TimeZone, err)
	}
	return loc, nil
}
