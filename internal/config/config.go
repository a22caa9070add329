package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Clock sources.
const (
	ClockSystem = "system"
	ClockChain  = "chain"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// DefaultGenesis anchors the system clock when no genesis is configured.
var DefaultGenesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	LogLevel       string
	Store          string
	StoreDir       string
	PGDSN          string
	SettlementsOut string
	Clock          string
	RPCURL         string
	Genesis        time.Time
	SlotDuration   time.Duration
	Lock           string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LockTTL        time.Duration
	Interval       time.Duration
	Pools          []string
	MetricsAddr    string
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LANDAU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("store", StoreFile)
	v.SetDefault("store-dir", "./data/pools")
	v.SetDefault("settlements-out", "./data/settlements.jsonl")
	v.SetDefault("clock", ClockSystem)
	v.SetDefault("slot-duration", 400*time.Millisecond)
	v.SetDefault("lock", LockLocal)
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("redis-db", 0)
	v.SetDefault("lock-ttl", 10*time.Second)
	v.SetDefault("interval", 2*time.Second)
	v.SetDefault("metrics-addr", ":9464")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 50*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	genesis := DefaultGenesis
	if raw := strings.TrimSpace(v.GetString("genesis")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse genesis: %w", err)
		}
		genesis = parsed
	}

	cfg := Config{
		LogLevel:       v.GetString("log-level"),
		Store:          strings.ToLower(v.GetString("store")),
		StoreDir:       v.GetString("store-dir"),
		PGDSN:          v.GetString("pg-dsn"),
		SettlementsOut: v.GetString("settlements-out"),
		Clock:          strings.ToLower(v.GetString("clock")),
		RPCURL:         v.GetString("rpc"),
		Genesis:        genesis,
		SlotDuration:   v.GetDuration("slot-duration"),
		Lock:           strings.ToLower(v.GetString("lock")),
		RedisAddr:      v.GetString("redis-addr"),
		RedisPassword:  v.GetString("redis-password"),
		RedisDB:        v.GetInt("redis-db"),
		LockTTL:        v.GetDuration("lock-ttl"),
		Interval:       v.GetDuration("interval"),
		Pools:          getStringSlice(v, "pools"),
		MetricsAddr:    v.GetString("metrics-addr"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.StoreDir == "" {
			return fmt.Errorf("store-dir is required for the file store")
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.Clock {
	case ClockSystem:
		if c.SlotDuration <= 0 {
			return fmt.Errorf("slot-duration must be positive")
		}
	case ClockChain:
		if c.RPCURL == "" {
			return fmt.Errorf("rpc url is required for the chain clock")
		}
	default:
		return fmt.Errorf("unknown clock %q", c.Clock)
	}

	switch c.Lock {
	case LockLocal:
	case LockRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis-addr is required for the redis lock")
		}
	default:
		return fmt.Errorf("unknown lock %q", c.Lock)
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
