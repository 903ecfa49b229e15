package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Workers int `toml:"workers" mapstructure:"workers" json:"workers"`
	Retry   int `toml:"retry" mapstructure:"retry" json:"retry"`

	Log    logConfig    `toml:"log" mapstructure:"log" json:"log"`
	Cache  cacheConfig  `toml:"cache" mapstructure:"cache" json:"cache"`
	Output outputConfig `toml:"output" mapstructure:"output" json:"output"`
	Parser parserConfig `toml:"parser" mapstructure:"parser" json:"parser"`
}

type logConfig struct {
	Level      string `toml:"level" mapstructure:"level" json:"level"`
	File       string `toml:"file" mapstructure:"file" json:"file"`
	MaxSize    int    `toml:"max_size" mapstructure:"max_size" json:"max_size"` // MB
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`
}

type outputConfig struct {
	Format string `toml:"format" mapstructure:"format" json:"format"` // json, yaml, text; empty picks by terminal
	Shape  string `toml:"shape" mapstructure:"shape" json:"shape"`
}

var cfg = defaultConfig()

// C returns the loaded config, or the defaults before Init.
func C() *Config {
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 3)
	v.SetDefault("retry", 3)

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("cache.ttl", 600)
	v.SetDefault("cache.num_counters", 100000)
	v.SetDefault("cache.max_cost", 10000)

	v.SetDefault("output.shape", "item")
}

func defaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		panic(fmt.Errorf("invalid default config: %w", err))
	}
	return c
}

// Init loads config.toml from the given path, or from the working directory
// and the user config dir. A missing file is fine when no path was given.
func Init(configFile string) error {
	setDefaults(viper.GetViper())
	viper.SetConfigType("toml")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "sankaku-dl"))
		}
	}
	viper.SetEnvPrefix("SANKAKU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func (c Config) Validate() error {
	if c.Workers < 1 || c.Retry < 0 {
		return fmt.Errorf("workers must be > 0 and retry >= 0, got workers=%d, retry=%d", c.Workers, c.Retry)
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "json", "yaml", "text":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

func Set(key string, value any) {
	viper.Set(key, value)
}
