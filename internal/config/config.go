// Package config loads application configuration from config.yaml and the
// environment, and initializes the global zap logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Rates  RatesConfig  `yaml:"rates" mapstructure:"rates"`
	SMTP   SMTPConfig   `yaml:"smtp" mapstructure:"smtp"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig says where the source workbooks live. BaseURL plus a file name
// forms the full URL of each workbook; http(s), ftp, and plain file paths are
// all accepted. Token is sent as an Authorization header for private
// repositories.
type SourceConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	Token        string `yaml:"token" mapstructure:"token"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`

	Presenze     string `yaml:"presenze" mapstructure:"presenze"`
	DeliveryTIM  string `yaml:"delivery_tim" mapstructure:"delivery_tim"`
	AssuranceTIM string `yaml:"assurance_tim" mapstructure:"assurance_tim"`
	DeliveryOF   string `yaml:"delivery_of" mapstructure:"delivery_of"`
	Avanzamento  string `yaml:"avanzamento" mapstructure:"avanzamento"`
}

// Timeout returns the fetch timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// CacheTTL returns the fetch cache TTL as a duration.
func (s SourceConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSecs) * time.Second
}

// RatesConfig holds the per-activity economic factors, in euro per completed
// event.
type RatesConfig struct {
	DeliveryTIMFTTH    float64 `yaml:"delivery_tim_ftth" mapstructure:"delivery_tim_ftth"`
	DeliveryTIMNonFTTH float64 `yaml:"delivery_tim_non_ftth" mapstructure:"delivery_tim_non_ftth"`
	AssuranceTIM       float64 `yaml:"assurance_tim" mapstructure:"assurance_tim"`
	DeliveryOF         float64 `yaml:"delivery_of" mapstructure:"delivery_of"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host        string `yaml:"host" mapstructure:"host"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	From        string `yaml:"from" mapstructure:"from"`
	Subject     string `yaml:"subject" mapstructure:"subject"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Sender returns the From address, falling back to User.
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

// Timeout returns the SMTP dial timeout as a duration.
func (s SMTPConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml (optional) and the AVANZAMENTO_* environment,
// applies defaults, and returns the typed configuration.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AVANZAMENTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("source.base_url", "https://raw.githubusercontent.com/euroirte/avanzamento-dati/main")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.cache_ttl_secs", 600)
	v.SetDefault("source.presenze", "Presenze.xlsx")
	v.SetDefault("source.delivery_tim", "Delivery TIM.xlsx")
	v.SetDefault("source.assurance_tim", "Assurance TIM.xlsx")
	v.SetDefault("source.delivery_of", "Delivery OF.xlsx")
	v.SetDefault("source.avanzamento", "Avanzamento.xlsx")
	v.SetDefault("rates.delivery_tim_ftth", 100)
	v.SetDefault("rates.delivery_tim_non_ftth", 40)
	v.SetDefault("rates.assurance_tim", 20)
	v.SetDefault("rates.delivery_of", 100)
	v.SetDefault("smtp.host", "mail.euroirte.it")
	v.SetDefault("smtp.subject", "EUROIRTE - Avanzamento Economico")
	v.SetDefault("smtp.timeout_secs", 30)

	// Credentials normally arrive via environment only; default them so the
	// env binding is picked up by Unmarshal.
	v.SetDefault("source.token", "")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from LogConfig.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
