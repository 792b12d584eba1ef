package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Loader reads the configuration.
// Priority: defaults -> config file -> environment (env wins).
type Loader struct {
	v          *viper.Viper
	configFile string
	getenv     func(string) string
}

// NewLoader creates a loader. An empty configFile searches for .gogat.yaml
// in the home directory and the working directory.
func NewLoader(configFile string) *Loader {
	return &Loader{
		v:          viper.New(),
		configFile: configFile,
		getenv:     os.Getenv,
	}
}

// Viper exposes the underlying instance so command flags can be bound
// before Load
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads and validates the configuration
func (l *Loader) Load() (*Config, error) {
	v := l.v

	if l.configFile != "" {
		path, err := homedir.Expand(l.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".gogat")
		v.SetConfigType("yaml")
	}

	// GOGAT_PAGER_MODE overrides pager.mode
	v.SetEnvPrefix("GOGAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine unless one was named explicitly
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.resolve(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the file Load read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// resolve fills values that depend on the environment
func (l *Loader) resolve(cfg *Config) error {
	if cfg.Pager.Command == "" {
		cfg.Pager.Command = l.getenv("PAGER")
	}
	if cfg.Pager.Command == "" {
		cfg.Pager.Command = DefaultPager
	}

	db, err := homedir.Expand(cfg.Index.Database)
	if err != nil {
		return fmt.Errorf("failed to expand index.database: %w", err)
	}
	cfg.Index.Database = db

	if cfg.Locator.Root != "" {
		root, err := homedir.Expand(cfg.Locator.Root)
		if err != nil {
			return fmt.Errorf("failed to expand locator.root: %w", err)
		}
		cfg.Locator.Root = root
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("highlighter.command", defaults.Highlighter.Command)
	v.SetDefault("highlighter.theme", defaults.Highlighter.Theme)
	v.SetDefault("highlighter.markdown_theme", defaults.Highlighter.MarkdownTheme)
	v.SetDefault("highlighter.force_color_in_pager", defaults.Highlighter.ForceColorInPager)

	v.SetDefault("pager.command", defaults.Pager.Command)
	v.SetDefault("pager.mode", defaults.Pager.Mode)

	v.SetDefault("selector.command", defaults.Selector.Command)
	v.SetDefault("selector.mode", defaults.Selector.Mode)

	v.SetDefault("snippet.mode", defaults.Snippet.Mode)

	v.SetDefault("locator.backend", defaults.Locator.Backend)
	v.SetDefault("locator.root", defaults.Locator.Root)
	v.SetDefault("locator.include_tests", defaults.Locator.IncludeTests)
	v.SetDefault("locator.include_vendor", defaults.Locator.IncludeVendor)
	v.SetDefault("locator.ignore", defaults.Locator.Ignore)

	v.SetDefault("index.database", defaults.Index.Database)
	v.SetDefault("index.workers", defaults.Index.Workers)

	v.SetDefault("log.level", defaults.Log.Level)
}
