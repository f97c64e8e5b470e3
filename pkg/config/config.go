// Package config loads botflow settings from flags, an optional config file
// and BOTFLOW_* environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StoreKind selects a storage backend.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
	StoreSQL    StoreKind = "sql"
)

// EnvPrefix is the prefix of environment overrides, e.g. BOTFLOW_REDIS_ADDR.
const EnvPrefix = "BOTFLOW"

// Config is the resolved application configuration.
type Config struct {
	FlowPath  string
	Listen    string
	LogLevel  string
	LogFormat string

	StateStore StoreKind
	StateDir   string
	UserStore  StoreKind
	UsersDir   string

	Redis RedisConfig
	SQL   SQLConfig

	VolatileTTL  time.Duration
	LockTTL      time.Duration
	MaxInputSize int
	MaxChain     int

	// EncryptionKey seals collected variables in the durable tier when set.
	EncryptionKey []byte
	// PIIPatterns name variables that never reach the durable tier.
	PIIPatterns []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type SQLConfig struct {
	Driver string
	DSN    string
}

// SetupFlags registers every setting on fs and binds it to v.
func SetupFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("config-file", "", "Path to config file.")
	fs.String("flow", "flow.yaml", "path to the flow definition (yaml or json)")
	fs.String("listen", ":8080", "http listen address")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.String("state-store", string(StoreMemory), "conversation state backend (memory, file, redis, sql)")
	fs.String("state-dir", "", "directory for the file state backend")
	fs.String("user-store", string(StoreMemory), "durable variable backend (memory, file, redis, sql)")
	fs.String("users-dir", "", "directory for the file user backend")
	fs.String("redis-addr", "localhost:6379", "redis host:port")
	fs.String("redis-password", "", "redis password")
	fs.Int("redis-db", 0, "redis database number")
	fs.String("redis-prefix", "botflow:", "prefix of every redis key")
	fs.String("sql-driver", "sqlite", "sql driver (sqlite, postgres)")
	fs.String("sql-dsn", "botflow.db", "sql data source name")
	fs.Duration("volatile-ttl", 0, "expire session variables after this idle time (0 keeps them)")
	fs.Duration("lock-ttl", 30*time.Second, "distributed lock lease")
	fs.Int("max-input-size", 4096, "maximum accepted text input in bytes")
	fs.Int("max-chain", 10, "maximum automatic next-node hops per event")
	fs.String("encryption-key", "", "base64 AES-256 key sealing durable variables")
	fs.StringSlice("pii-patterns", nil, "regexps of variable names kept out of the durable tier")
	return v.BindPFlags(fs)
}

// Load reads the optional config file and environment into a Config.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile := v.GetString("config-file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	c := &Config{
		FlowPath:     v.GetString("flow"),
		Listen:       v.GetString("listen"),
		LogLevel:     v.GetString("log-level"),
		LogFormat:    v.GetString("log-format"),
		StateStore:   StoreKind(strings.ToLower(v.GetString("state-store"))),
		StateDir:     v.GetString("state-dir"),
		UserStore:    StoreKind(strings.ToLower(v.GetString("user-store"))),
		UsersDir:     v.GetString("users-dir"),
		VolatileTTL:  v.GetDuration("volatile-ttl"),
		LockTTL:      v.GetDuration("lock-ttl"),
		MaxInputSize: v.GetInt("max-input-size"),
		MaxChain:     v.GetInt("max-chain"),
		PIIPatterns:  v.GetStringSlice("pii-patterns"),
	}
	c.Redis = RedisConfig{
		Addr:     v.GetString("redis-addr"),
		Password: v.GetString("redis-password"),
		DB:       v.GetInt("redis-db"),
		Prefix:   v.GetString("redis-prefix"),
	}
	c.SQL = SQLConfig{
		Driver: v.GetString("sql-driver"),
		DSN:    v.GetString("sql-dsn"),
	}

	if raw := v.GetString("encryption-key"); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption-key: %w", err)
		}
		c.EncryptionKey = key
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects unknown backends, out-of-range limits and PII patterns
// that do not compile.
func (c *Config) Validate() error {
	var errs []error
	switch c.StateStore {
	case StoreMemory, StoreFile, StoreRedis, StoreSQL:
	default:
		errs = append(errs, fmt.Errorf("unknown state-store %q", c.StateStore))
	}
	switch c.UserStore {
	case StoreMemory, StoreFile, StoreRedis, StoreSQL:
	default:
		errs = append(errs, fmt.Errorf("unknown user-store %q", c.UserStore))
	}
	if c.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("max-input-size must be positive, got %d", c.MaxInputSize))
	}
	if c.MaxChain <= 0 {
		errs = append(errs, fmt.Errorf("max-chain must be positive, got %d", c.MaxChain))
	}
	if c.EncryptionKey != nil && len(c.EncryptionKey) != 32 {
		errs = append(errs, fmt.Errorf("encryption-key must decode to 32 bytes, got %d", len(c.EncryptionKey)))
	}
	for _, p := range c.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid pii-pattern %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// NeedsRedis reports whether any backend uses redis.
func (c *Config) NeedsRedis() bool {
	return c.StateStore == StoreRedis || c.UserStore == StoreRedis
}

// NeedsSQL reports whether any backend uses the sql database.
func (c *Config) NeedsSQL() bool {
	return c.StateStore == StoreSQL || c.UserStore == StoreSQL
}
