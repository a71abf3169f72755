// Package bootstrap loads the process-level settings a host needs before
// it can even construct the CVar/command registries: how many hash
// buckets to size them with, whether names fold case, the default
// history file and config-file paths, and the initial prompt string.
// This is distinct from the CVar system itself, which is the
// runtime-mutable layer that exists only once these registries are
// built.
package bootstrap

import (
	"bytes"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the small, fixed set of settings needed to construct a
// cvarshell engine, sourced from a cvarshell.yaml file, environment
// variables (CVARSHELL_ prefix), and finally a .env file loaded ahead of
// either.
type Config struct {
	Buckets         int    `mapstructure:"buckets" yaml:"buckets"`
	CaseInsensitive bool   `mapstructure:"case_insensitive" yaml:"case_insensitive"`
	HistoryCapacity int    `mapstructure:"history_capacity" yaml:"history_capacity"`
	ConfigPath      string `mapstructure:"config_path" yaml:"config_path"`
	HistFile        string `mapstructure:"hist_file" yaml:"hist_file"`
	Prompt          string `mapstructure:"prompt" yaml:"prompt"`
}

func defaults() Config {
	return Config{
		Buckets:         64,
		CaseInsensitive: false,
		HistoryCapacity: 256,
		ConfigPath:      "cvarshell.cfg",
		HistFile:        ".cvarshell_history",
		Prompt:          "> ",
	}
}

// Load reads configPath (if it exists) as YAML, layers CVARSHELL_-prefixed
// environment variables over it, and returns the resolved Config. A
// missing configPath is not an error; defaults(), possibly overridden by
// the environment, are returned instead.
//
// envFile, if non-empty and present on disk, is loaded into the process
// environment first via godotenv, so a .env-committed
// CVARSHELL_HISTORY_CAPACITY takes effect the same as an externally-set
// one. The CLI configures the logger before Load runs, so a
// CVARSHELL_LOG_LEVEL found only in the .env file does not change the
// log level.
func Load(configPath, envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, err
			}
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("cvarshell")
	v.AutomaticEnv()

	d := defaults()
	v.SetDefault("buckets", d.Buckets)
	v.SetDefault("case_insensitive", d.CaseInsensitive)
	v.SetDefault("history_capacity", d.HistoryCapacity)
	v.SetDefault("config_path", d.ConfigPath)
	v.SetDefault("hist_file", d.HistFile)
	v.SetDefault("prompt", d.Prompt)

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			v.SetConfigType("yaml")
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Dump renders cfg back to YAML, for a host's "show effective bootstrap
// config" diagnostic command.
func (c Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
