package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix        = "TINYTOSH"
	GlobalConfigDir  = ".config/tinytosh"
	GlobalConfigFile = "config.yaml"
)

// Config carries runtime options for tinytosh. Sample rate and baud rate are
// fixed by the display firmware and are deliberately absent.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	Port      string `mapstructure:"port"`
	Minimized bool   `mapstructure:"minimized"`
}

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFile:   "",
		Port:      "",
		Minimized: false,
	}
}

// Flag names mapped to config keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"log-file":  "log_file",
	"port":      "port",
	"minimized": "minimized",
}

// AddFlags registers the config flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.String("log-file", d.LogFile, "write logs to this file instead of the console")
	fs.String("port", d.Port, "serial port to connect to at start")
	fs.Bool("minimized", d.Minimized, "run the bridge without the terminal UI")
}

// Load merges, lowest priority first: defaults, the config file, TINYTOSH_*
// environment variables and flags set on fs. An empty path means the global
// config file, which may be absent.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("port", d.Port)
	v.SetDefault("minimized", d.Minimized)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return d, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := path != ""
	if !explicit {
		path = globalPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return d, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return d, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DefaultLogFile is where the terminal UI mode logs, since the screen is taken.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tinytosh", "tinytosh.log")
}

func globalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}
