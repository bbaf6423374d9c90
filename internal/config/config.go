package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Notion  NotionConfig  `yaml:"notion" mapstructure:"notion"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// CatalogConfig configures school catalog feed syncing.
type CatalogConfig struct {
	FeedURL        string  `yaml:"feed_url" mapstructure:"feed_url"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FTPHost        string  `yaml:"ftp_host" mapstructure:"ftp_host"`
	FTPUser        string  `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPassword    string  `yaml:"ftp_password" mapstructure:"ftp_password"`
	FTPTimeoutSecs int     `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
}

// NotionConfig holds Notion API credentials and database IDs for lead intake.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ReportConfig tunes snapshot rendering.
type ReportConfig struct {
	Detail string `yaml:"detail" mapstructure:"detail"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the configuration is usable for the given mode.
// Modes correspond to command groups: "serve", "report", "catalog", "leads".
func (c *Config) Validate(mode string) error {
	var missing []string

	requireStore := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				missing = append(missing, "store.sqlite_path is required for the sqlite driver")
			}
		default:
			missing = append(missing, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "serve":
		requireStore()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "report":
		requireStore()
		if c.Report.Detail != "summary" && c.Report.Detail != "detailed" {
			missing = append(missing, "report.detail must be summary or detailed")
		}
	case "catalog":
		requireStore()
		if c.Catalog.FeedURL == "" && c.Catalog.FTPHost == "" {
			missing = append(missing, "catalog.feed_url or catalog.ftp_host is required")
		}
		if c.Catalog.RatePerSecond <= 0 {
			missing = append(missing, "catalog.rate_per_second must be > 0")
		}
	case "leads":
		requireStore()
		if c.Notion.Token == "" {
			missing = append(missing, "notion.token is required")
		}
		if c.Notion.LeadDB == "" {
			missing = append(missing, "notion.lead_db is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADVISORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "advisory.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("catalog.rate_per_second", 2.0)
	v.SetDefault("catalog.timeout_secs", 60)
	v.SetDefault("catalog.ftp_timeout_secs", 30)
	v.SetDefault("report.detail", "detailed")

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

// InitLogger initializes the global zap logger.
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
