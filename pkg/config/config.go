package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TazeAI/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		RateLimit       struct {
			Enabled bool          `yaml:"enabled"`
			Rate    int           `yaml:"rate"`
			Burst   int           `yaml:"burst"`
			Refill  time.Duration `yaml:"refill"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		// Errors are aggregated and shipped to Kafka when set.
		CollectTopic    string        `yaml:"collect_topic"`
		CollectInterval time.Duration `yaml:"collect_interval"`
	} `yaml:"log"`
	Provider struct {
		BaseURL  string        `yaml:"base_url"`
		User     string        `yaml:"user"`
		Password string        `yaml:"password"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"provider"`
	Ingest struct {
		Tickers     []string      `yaml:"tickers"`
		RangeDays   int           `yaml:"range_days"`
		Concurrency int           `yaml:"concurrency"`
		SymbolDelay time.Duration `yaml:"symbol_delay"`
		Schedule    string        `yaml:"schedule"`
	} `yaml:"ingest"`
	Store struct {
		Backend  string `yaml:"backend"`
		DataRoot string `yaml:"data_root"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		URL      string `yaml:"url"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Model struct {
		ArtifactPath string        `yaml:"artifact_path"`
		RemoteURL    string        `yaml:"remote_url"`
		Timeout      time.Duration `yaml:"timeout"`
		HorizonDays  int           `yaml:"horizon_days"`
		TrainUntil   string        `yaml:"train_until"`
		Lambda       float64       `yaml:"lambda"`
	} `yaml:"model"`
	Backtest struct {
		InitialCapital float64   `yaml:"initial_capital"`
		LookbackDays   int       `yaml:"lookback_days"`
		Workers        int       `yaml:"workers"`
		ReportPath     string    `yaml:"report_path"`
		Profiles       []Profile `yaml:"profiles"`
	} `yaml:"backtest"`
	Analyzer struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"analyzer"`
}

// Profile is a trading rule set: buy when any condition holds, sell when the
// score drops below SellBelow.
type Profile struct {
	Name      string         `yaml:"name"`
	Buy       []BuyCondition `yaml:"buy"`
	SellBelow float64        `yaml:"sell_below"`
}

// BuyCondition holds when score > ScoreAbove and, if Risk is set, the risk
// label equals Risk.
type BuyCondition struct {
	ScoreAbove float64 `yaml:"score_above"`
	Risk       string  `yaml:"risk"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads a .env file if present, then config from YAML, and
// overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("TRADEBOX_API_USER"); v != "" {
		c.Provider.User = v
	}
	if v := os.Getenv("TRADEBOX_API_PASS"); v != "" {
		c.Provider.Password = v
	}
	if v := os.Getenv("TRADEBOX_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("ML_TICKERS"); v != "" {
		c.Ingest.Tickers = SplitList(v)
	}
	if v := os.Getenv("ML_HISTORY_RANGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ingest.RangeDays = n
		}
	}
	if v := os.Getenv("ML_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ingest.Concurrency = n
		}
	}
	if v := os.Getenv("ML_OUTPUT_DIR"); v != "" {
		c.Store.DataRoot = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = SplitList(v)
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Store.Backend != "file" && c.Store.Backend != "clickhouse" {
		return fmt.Errorf("store.backend must be 'file' or 'clickhouse', got '%s'", c.Store.Backend)
	}
	if c.Store.Backend == "file" && c.Store.DataRoot == "" {
		return fmt.Errorf("store.data_root is required for the file backend")
	}
	if len(c.Ingest.Tickers) == 0 {
		return fmt.Errorf("ingest.tickers cannot be empty")
	}
	for _, t := range c.Ingest.Tickers {
		if !util.IsTicker(t) {
			return fmt.Errorf("ingest.tickers: %q is not a B3 ticker", t)
		}
	}
	if c.Ingest.RangeDays <= 0 {
		return fmt.Errorf("ingest.range_days must be positive")
	}
	if c.Model.HorizonDays <= 0 {
		return fmt.Errorf("model.horizon_days must be positive")
	}
	if c.Model.Lambda < 0 {
		return fmt.Errorf("model.lambda must be non-negative")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	seen := make(map[string]struct{}, len(c.Backtest.Profiles))
	for _, p := range c.Backtest.Profiles {
		if p.Name == "" {
			return fmt.Errorf("backtest.profiles: name is required")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("backtest.profiles: duplicate profile %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if len(p.Buy) == 0 {
			return fmt.Errorf("backtest.profiles[%s]: at least one buy condition is required", p.Name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Ingest.RangeDays == 0 {
		c.Ingest.RangeDays = 365
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = 1
	}
	c.Ingest.Tickers = util.NormalizeSymbols(c.Ingest.Tickers)
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Model.HorizonDays == 0 {
		c.Model.HorizonDays = 90
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 3 * time.Second
	}
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = 10000
	}
	if c.Backtest.LookbackDays == 0 {
		c.Backtest.LookbackDays = 730
	}
	if c.Backtest.Workers <= 0 {
		c.Backtest.Workers = 1
	}
	if len(c.Backtest.Profiles) == 0 {
		c.Backtest.Profiles = DefaultProfiles()
	}
	if c.Analyzer.CacheTTL == 0 {
		c.Analyzer.CacheTTL = 5 * time.Minute
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// DefaultProfiles are the conservative, moderate and aggressive rule sets.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "Conservador", Buy: []BuyCondition{{ScoreAbove: 8.5, Risk: "BAIXO"}}, SellBelow: 6.0},
		{Name: "Moderado", Buy: []BuyCondition{{ScoreAbove: 7.0}}, SellBelow: 4.0},
		{Name: "Agressivo", Buy: []BuyCondition{{ScoreAbove: 6.0}, {ScoreAbove: 5.0, Risk: "ALTO"}}, SellBelow: 3.5},
	}
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
