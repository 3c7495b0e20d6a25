package configloader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wallet_monitor/internal/domain/entity"
)

// ServerConfig holds the REST server configuration.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// MonitorConfig tunes the polling engine.
type MonitorConfig struct {
	BalanceInterval  time.Duration      `yaml:"balanceInterval"`
	TransferInterval time.Duration      `yaml:"transferInterval"`
	MaxWorkers       int64              `yaml:"maxWorkers"`
	FetchTimeout     time.Duration      `yaml:"fetchTimeout"`
	ShutdownGrace    time.Duration      `yaml:"shutdownGrace"`
	DefaultThreshold *float64           `yaml:"defaultThreshold"` // nil when unset; 0 alerts on every change
	Thresholds       map[string]float64 `yaml:"thresholds"`
	IgnoreBaseline   bool               `yaml:"ignoreBaseline"`
}

// AlertsConfig holds alert retention settings.
type AlertsConfig struct {
	Retention     time.Duration `yaml:"retention"`
	PruneInterval time.Duration `yaml:"pruneInterval"`
}

// CoinGeckoConfig holds the configuration for the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL        string            `yaml:"baseURL"`
	APIKey         string            `yaml:"apiKey"`
	VsCurrency     string            `yaml:"vsCurrency"`
	RequestTimeout time.Duration     `yaml:"requestTimeout"`
	RateLimit      float64           `yaml:"rateLimit"`
	Burst          int               `yaml:"burst"`
	SymbolIDs      map[string]string `yaml:"symbolIds"`
}

// DexTokenConfig locates a token on DEX Screener.
type DexTokenConfig struct {
	Chain   string `yaml:"chain"`
	Address string `yaml:"address"`
}

// DexScreenerConfig holds DEX Screener settings.
type DexScreenerConfig struct {
	BaseURL        string                    `yaml:"baseURL"`
	RequestTimeout time.Duration             `yaml:"requestTimeout"`
	Tokens         map[string]DexTokenConfig `yaml:"tokens"`
}

// QuoteConfig selects and tunes the price source.
type QuoteConfig struct {
	Provider    string             `yaml:"provider"` // mock | coingecko | dexscreener
	CacheTTL    time.Duration      `yaml:"cacheTTL"`
	Variation   float64            `yaml:"variation"`
	Prices      map[string]float64 `yaml:"prices"` // mock provider table override
	CoinGecko   CoinGeckoConfig    `yaml:"coingecko"`
	DexScreener DexScreenerConfig  `yaml:"dexscreener"`
}

// SourcesConfig selects where balances and transfers are read from.
type SourcesConfig struct {
	Balance        string        `yaml:"balance"`  // simulated | evm
	Transfer       string        `yaml:"transfer"` // simulated | none
	Seed           int64         `yaml:"seed"`
	RPCCallTimeout time.Duration `yaml:"rpcCallTimeout"`
	MaxBatchSize   int           `yaml:"maxBatchSize"`
}

// TargetConfig is a statically configured watch target.
type TargetConfig struct {
	Kind        string `yaml:"kind"` // balance (default) | transfer
	Chain       string `yaml:"chain"`
	Address     string `yaml:"address"`
	PortfolioID string `yaml:"portfolioId"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig               `yaml:"server"`
	Logging     LoggingConfig              `yaml:"logging"`
	Monitor     MonitorConfig              `yaml:"monitor"`
	Alerts      AlertsConfig               `yaml:"alerts"`
	Quote       QuoteConfig                `yaml:"quote"`
	Sources     SourcesConfig              `yaml:"sources"`
	Networks    []entity.NetworkDefinition `yaml:"networks"`
	TokensDir   string                     `yaml:"tokensDir"`
	TargetsFile string                     `yaml:"targetsFile"`
	Targets     []TargetConfig             `yaml:"targets"`
}

// Load reads the YAML configuration file from the given path and applies defaults.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	setString(&cfg.Server.Port, "8080", "server.port")
	setDuration(&cfg.Server.ReadTimeout, 10*time.Second, "server.readTimeout")
	setDuration(&cfg.Server.WriteTimeout, 10*time.Second, "server.writeTimeout")
	setDuration(&cfg.Server.IdleTimeout, 60*time.Second, "server.idleTimeout")

	setString(&cfg.Logging.Level, "info", "logging.level")

	setDuration(&cfg.Monitor.BalanceInterval, 15*time.Minute, "monitor.balanceInterval")
	setDuration(&cfg.Monitor.TransferInterval, 10*time.Minute, "monitor.transferInterval")
	if cfg.Monitor.MaxWorkers <= 0 {
		cfg.Monitor.MaxWorkers = 2
		logrus.Infof("monitor.maxWorkers not set, defaulting to %d", cfg.Monitor.MaxWorkers)
	}
	setDuration(&cfg.Monitor.FetchTimeout, 30*time.Second, "monitor.fetchTimeout")
	setDuration(&cfg.Monitor.ShutdownGrace, 10*time.Second, "monitor.shutdownGrace")
	if cfg.Monitor.DefaultThreshold == nil {
		v := 50000.0
		cfg.Monitor.DefaultThreshold = &v
		logrus.Infof("monitor.defaultThreshold not set, defaulting to %.0f", v)
	}

	setDuration(&cfg.Alerts.Retention, 24*time.Hour, "alerts.retention")
	setDuration(&cfg.Alerts.PruneInterval, time.Hour, "alerts.pruneInterval")

	setString(&cfg.Quote.Provider, "mock", "quote.provider")
	setDuration(&cfg.Quote.CacheTTL, time.Minute, "quote.cacheTTL")
	setString(&cfg.Quote.CoinGecko.BaseURL, "https://api.coingecko.com/api/v3", "quote.coingecko.baseURL")
	setString(&cfg.Quote.CoinGecko.VsCurrency, "usd", "quote.coingecko.vsCurrency")
	setDuration(&cfg.Quote.CoinGecko.RequestTimeout, 10*time.Second, "quote.coingecko.requestTimeout")

	setString(&cfg.Sources.Balance, "simulated", "sources.balance")
	setString(&cfg.Sources.Transfer, "simulated", "sources.transfer")
	if cfg.Sources.Seed == 0 {
		cfg.Sources.Seed = time.Now().UnixNano()
	}
	setDuration(&cfg.Sources.RPCCallTimeout, 10*time.Second, "sources.rpcCallTimeout")
	if cfg.Sources.MaxBatchSize <= 0 {
		cfg.Sources.MaxBatchSize = 50
	}

	setString(&cfg.TokensDir, "data/tokens", "tokensDir")
}

func validate(cfg *Config) error {
	cfg.Quote.Provider = strings.ToLower(cfg.Quote.Provider)
	switch cfg.Quote.Provider {
	case "mock", "coingecko", "dexscreener":
	default:
		return fmt.Errorf("quote.provider: unsupported provider %q", cfg.Quote.Provider)
	}

	cfg.Sources.Balance = strings.ToLower(cfg.Sources.Balance)
	switch cfg.Sources.Balance {
	case "simulated", "evm":
	default:
		return fmt.Errorf("sources.balance: unsupported source %q", cfg.Sources.Balance)
	}

	cfg.Sources.Transfer = strings.ToLower(cfg.Sources.Transfer)
	switch cfg.Sources.Transfer {
	case "simulated", "none":
	default:
		return fmt.Errorf("sources.transfer: unsupported source %q", cfg.Sources.Transfer)
	}

	for i, t := range cfg.Targets {
		if strings.TrimSpace(t.Chain) == "" || strings.TrimSpace(t.Address) == "" {
			return fmt.Errorf("targets[%d]: chain and address are required", i)
		}
		if t.Kind == "" {
			cfg.Targets[i].Kind = string(entity.KindBalance)
		} else if _, ok := entity.ParseTaskKind(t.Kind); !ok {
			return fmt.Errorf("targets[%d]: unknown kind %q", i, t.Kind)
		}
	}
	return nil
}

func setString(field *string, value, name string) {
	if *field == "" {
		*field = value
		logrus.Infof("%s not set, defaulting to %s", name, value)
	}
}

func setDuration(field *time.Duration, value time.Duration, name string) {
	if *field <= 0 {
		*field = value
		logrus.Infof("%s not set, defaulting to %s", name, value)
	}
}
