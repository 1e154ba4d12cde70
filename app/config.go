package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/pawdex/app/telemetry"
	"github.com/paw-chain/pawdex/x/dex/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PAWDEX_API_ADDRESS
	EnvPrefix = "PAWDEX"

	ConfigFileName  = "config.toml"
	GenesisFileName = "genesis.json"
)

// DefaultNodeHome is the default home directory
var DefaultNodeHome = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pawdex"
	}
	return filepath.Join(home, ".pawdex")
}()

// Config is the host configuration
type Config struct {
	Home string

	DBBackend string
	DBDir     string

	APIAddress     string
	MonitorAddress string
	RateLimit      float64
	RateBurst      int

	SchedulerInterval time.Duration

	Params types.Params

	LogLevel  string
	LogFormat string

	Telemetry telemetry.Config
}

// DefaultConfig returns the default host configuration rooted at home
func DefaultConfig(home string) Config {
	return Config{
		Home:              home,
		DBBackend:         "goleveldb",
		DBDir:             "data",
		APIAddress:        "127.0.0.1:1317",
		MonitorAddress:    "127.0.0.1:36660",
		RateLimit:         20,
		RateBurst:         40,
		SchedulerInterval: 0,
		Params:            types.DefaultParams(),
		LogLevel:          "info",
		LogFormat:         "plain",
		Telemetry:         telemetry.DefaultConfig(),
	}
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig("")
	v.SetDefault("db.backend", d.DBBackend)
	v.SetDefault("db.dir", d.DBDir)
	v.SetDefault("api.address", d.APIAddress)
	v.SetDefault("api.monitor_address", d.MonitorAddress)
	v.SetDefault("api.rate_limit", d.RateLimit)
	v.SetDefault("api.rate_burst", d.RateBurst)
	v.SetDefault("scheduler.interval", d.SchedulerInterval.String())
	v.SetDefault("dex.taker_fee_numerator", d.Params.TakerFee.Numerator)
	v.SetDefault("dex.taker_fee_denominator", d.Params.TakerFee.Denominator)
	v.SetDefault("dex.distribution_interval", d.Params.DistributionInterval)
	v.SetDefault("dex.max_markets_per_run", d.Params.MaxMarketsPerRun)
	v.SetDefault("log.level", d.LogLevel)
	v.SetDefault("log.format", d.LogFormat)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
}

// NewViper returns a viper reading <home>/config.toml and PAWDEX_* env vars.
// A missing config file is not an error.
func NewViper(home string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	v.SetConfigFile(filepath.Join(home, "config", ConfigFileName))
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(v.ConfigFileUsed()); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads a Config out of v
func LoadConfig(home string, v *viper.Viper) (Config, error) {
	cfg := DefaultConfig(home)
	var err error

	cfg.DBBackend = cast.ToString(v.Get("db.backend"))
	cfg.DBDir = cast.ToString(v.Get("db.dir"))
	cfg.APIAddress = cast.ToString(v.Get("api.address"))
	cfg.MonitorAddress = cast.ToString(v.Get("api.monitor_address"))
	if cfg.RateLimit, err = cast.ToFloat64E(v.Get("api.rate_limit")); err != nil {
		return cfg, fmt.Errorf("api.rate_limit: %w", err)
	}
	if cfg.RateBurst, err = cast.ToIntE(v.Get("api.rate_burst")); err != nil {
		return cfg, fmt.Errorf("api.rate_burst: %w", err)
	}
	if cfg.SchedulerInterval, err = cast.ToDurationE(v.Get("scheduler.interval")); err != nil {
		return cfg, fmt.Errorf("scheduler.interval: %w", err)
	}

	num, err := cast.ToUint64E(v.Get("dex.taker_fee_numerator"))
	if err != nil {
		return cfg, fmt.Errorf("dex.taker_fee_numerator: %w", err)
	}
	den, err := cast.ToUint64E(v.Get("dex.taker_fee_denominator"))
	if err != nil {
		return cfg, fmt.Errorf("dex.taker_fee_denominator: %w", err)
	}
	cfg.Params.TakerFee = types.NewTakerFee(num, den)
	if cfg.Params.DistributionInterval, err = cast.ToInt64E(v.Get("dex.distribution_interval")); err != nil {
		return cfg, fmt.Errorf("dex.distribution_interval: %w", err)
	}
	if cfg.Params.MaxMarketsPerRun, err = cast.ToUint32E(v.Get("dex.max_markets_per_run")); err != nil {
		return cfg, fmt.Errorf("dex.max_markets_per_run: %w", err)
	}
	if err := cfg.Params.Validate(); err != nil {
		return cfg, err
	}

	cfg.LogLevel = cast.ToString(v.Get("log.level"))
	cfg.LogFormat = cast.ToString(v.Get("log.format"))

	cfg.Telemetry.Enabled = cast.ToBool(v.Get("telemetry.enabled"))
	cfg.Telemetry.Endpoint = cast.ToString(v.Get("telemetry.endpoint"))
	if cfg.Telemetry.SampleRate, err = cast.ToFloat64E(v.Get("telemetry.sample_rate")); err != nil {
		return cfg, fmt.Errorf("telemetry.sample_rate: %w", err)
	}
	return cfg, nil
}

// DataDir returns the absolute database directory
func (c Config) DataDir() string {
	if filepath.IsAbs(c.DBDir) {
		return c.DBDir
	}
	return filepath.Join(c.Home, c.DBDir)
}

// GenesisFile returns the path of the genesis document
func (c Config) GenesisFile() string {
	return filepath.Join(c.Home, "config", GenesisFileName)
}

// NewLogger builds the host logger. Format "json" writes JSON lines.
func NewLogger(w io.Writer, level, format string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	switch format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "plain", "":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log.NewLogger(w, opts...), nil
}
