package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ammasidli/storefront/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Stripe carries the processor credentials and the category to connected
// account mapping used when settled funds are split. DefaultAccount receives
// the share of any category missing from CategoryAccounts.
type Stripe struct {
	SecretKey        string            `mapstructure:"secret_key"        json:"-"`
	WebhookSecret    string            `mapstructure:"webhook_secret"    json:"-"`
	Currency         string            `mapstructure:"currency"          json:"currency"`
	IntentURL        string            `mapstructure:"intent_url"        json:"intent_url"`
	DefaultAccount   string            `mapstructure:"default_account"   json:"default_account"`
	CategoryAccounts map[string]string `mapstructure:"category_accounts" json:"category_accounts"`
}

type Sms struct {
	Sender      string `mapstructure:"sender"       json:"sender"`
	EmailDomain string `mapstructure:"email_domain" json:"email_domain"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Stripe      `mapstructure:"stripe"      json:"stripe"`
	Sms         `mapstructure:"sms"         json:"sms"`
}

func InitConfig(c context.Context, filename string) Config {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main InitConfig").
		Str(log.KeyProcess, "init config").
		Str("filename", filename).
		Logger()

	viper.SetConfigName(filename)
	viper.AddConfigPath("./env")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	err := viper.ReadInConfig()
	if err != nil {
		err = fmt.Errorf("error when reading config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("read config")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	cfg := Config{}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("unmarshaled config")

	return cfg
}
