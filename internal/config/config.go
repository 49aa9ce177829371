// Package config loads taskgate settings from an optional YAML file, a .env file
// and TASKGATE_ prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TASKGATE_REDIS_ADDR.
const EnvPrefix = "TASKGATE"

// FileName is the config file looked up when no explicit path is given.
const FileName = "taskgate.yaml"

// Config is the resolved taskgate configuration.
type Config struct {
	DBPath    string      `mapstructure:"db_path"`
	Actor     string      `mapstructure:"actor"`
	JWTSecret string      `mapstructure:"jwt_secret"`
	Redis     RedisConfig `mapstructure:"redis"`
	Kafka     KafkaConfig `mapstructure:"kafka"`
	Trace     TraceConfig `mapstructure:"trace"`
	Log       LogConfig   `mapstructure:"log"`
}

// RedisConfig selects the distributed item locker. Empty Addr means in-process locks.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// KafkaConfig selects the workflow event publisher. Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"` // comma separated
	Topic   string `mapstructure:"topic"`
}

// BrokerList splits Brokers on commas, dropping blanks.
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// TraceConfig controls the stdout span exporter.
type TraceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Output  string `mapstructure:"output"` // file path, empty for stderr
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load resolves the configuration. path may be empty, in which case
// taskgate.yaml is looked up in the working directory and then ~/.taskgate.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".taskgate"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("actor", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.lock_ttl", 30*time.Second)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "taskgate.workflow")
	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.output", "")
	v.SetDefault("log.level", "warn")
}
