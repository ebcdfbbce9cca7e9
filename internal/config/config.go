// Package config loads settings from defaults, an optional YAML file and
// CHECKERS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
)

const EnvPrefix = "CHECKERS"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
	Game     GameConfig     `mapstructure:"game"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Autoplay AutoplayConfig `mapstructure:"autoplay"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
}

type SearchConfig struct {
	Depth int `mapstructure:"depth" validate:"min=1,max=8"`
}

type GameConfig struct {
	Name          string `mapstructure:"name" validate:"max=64"`
	Width         int    `mapstructure:"width" validate:"min=4,max=26,even"`
	Height        int    `mapstructure:"height" validate:"min=8,max=26,even"`
	MandatoryTake bool   `mapstructure:"mandatory_take"`
	BlackStarts   bool   `mapstructure:"black_starts"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite file none"`
	Path    string `mapstructure:"path" validate:"required_if=Backend sqlite"`
	Dir     string `mapstructure:"dir" validate:"required_if=Backend file"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
	Dev       bool   `mapstructure:"dev"`
	RateLimit int    `mapstructure:"rate_limit" validate:"min=0"`
}

type AutoplayConfig struct {
	Games       int `mapstructure:"games" validate:"min=1"`
	Workers     int `mapstructure:"workers" validate:"min=1"`
	RandomPlies int `mapstructure:"random_plies" validate:"min=0"`
	MaxPlies    int `mapstructure:"max_plies" validate:"min=1"`
}

func setDefaults(v *viper.Viper) {
	opts := board.DefaultOptions()

	v.SetDefault("log.level", "info")
	v.SetDefault("search.depth", engine.DefaultDepth)
	v.SetDefault("game.name", opts.Name)
	v.SetDefault("game.width", opts.Width)
	v.SetDefault("game.height", opts.Height)
	v.SetDefault("game.mandatory_take", opts.MandatoryTake)
	v.SetDefault("game.black_starts", opts.BlackStarts)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "checkers.db")
	v.SetDefault("storage.dir", "saves")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev", false)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("autoplay.games", 10)
	v.SetDefault("autoplay.workers", 4)
	v.SetDefault("autoplay.random_plies", 2)
	v.SetDefault("autoplay.max_plies", 200)
}

// Load reads configuration. An empty path looks for checkers.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("checkers")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := core.Validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %s", core.DescribeValidation(err))
	}
	return nil
}

// BoardOptions returns the options new games start with.
func (c *Config) BoardOptions() board.Options {
	return board.Options{
		Name:          c.Game.Name,
		Width:         c.Game.Width,
		Height:        c.Game.Height,
		MandatoryTake: c.Game.MandatoryTake,
		BlackStarts:   c.Game.BlackStarts,
	}
}
