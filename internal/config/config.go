package config

import (
	"log"

	"github.com/spf13/viper"
)

type Backend struct {
	BaseURL   string `mapstructure:"base-url"`
	TimeoutMs int    `mapstructure:"timeout-ms"`
}

type Gateway struct {
	BaseURL   string `mapstructure:"base-url"`
	TimeoutMs int    `mapstructure:"timeout-ms"`
}

type Auth struct {
	StorePath string `mapstructure:"store-path"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Backend Backend `mapstructure:"backend"`
	Gateway Gateway `mapstructure:"gateway"`
	Auth    Auth    `mapstructure:"auth"`
	Metrics Metrics `mapstructure:"metrics"`
	Logs    Logs    `mapstructure:"logs"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
