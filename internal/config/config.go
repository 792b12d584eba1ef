package config

// Config is the complete gogat configuration, loaded from .gogat.yaml with
// GOGAT_* environment overrides
type Config struct {
	Highlighter HighlighterConfig `yaml:"highlighter" mapstructure:"highlighter"`
	Pager       PagerConfig       `yaml:"pager" mapstructure:"pager"`
	Selector    SelectorConfig    `yaml:"selector" mapstructure:"selector"`
	Snippet     SnippetConfig     `yaml:"snippet" mapstructure:"snippet"`
	Locator     LocatorConfig     `yaml:"locator" mapstructure:"locator"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// HighlighterConfig describes the external highlighter
type HighlighterConfig struct {
	Command           string `yaml:"command" mapstructure:"command"`                           // e.g. "gat"
	Theme             string `yaml:"theme" mapstructure:"theme"`                               // empty keeps gat's default
	MarkdownTheme     string `yaml:"markdown_theme" mapstructure:"markdown_theme"`             // theme for rendered markdown
	ForceColorInPager bool   `yaml:"force_color_in_pager" mapstructure:"force_color_in_pager"` // pass --force-color when paging
}

// PagerConfig describes the pager and when it is used
type PagerConfig struct {
	Command string `yaml:"command" mapstructure:"command"` // falls back to $PAGER, then "less -R"
	Mode    string `yaml:"mode" mapstructure:"mode"`       // "auto", "always" or "never"
}

// SelectorConfig describes how ambiguous matches are resolved
type SelectorConfig struct {
	Command string `yaml:"command" mapstructure:"command"` // fuzzy finder command line
	Mode    string `yaml:"mode" mapstructure:"mode"`       // "interactive" or "first"
}

// SnippetConfig chooses how definitions reach the highlighter
type SnippetConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // "range" or "extract"
}

// LocatorConfig chooses the resolver backend and the files it sees
type LocatorConfig struct {
	Backend       string   `yaml:"backend" mapstructure:"backend"` // "source", "index" or "packages"
	Root          string   `yaml:"root" mapstructure:"root"`       // empty means the working directory
	IncludeTests  bool     `yaml:"include_tests" mapstructure:"include_tests"`
	IncludeVendor bool     `yaml:"include_vendor" mapstructure:"include_vendor"`
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns relative to the root
}

// IndexConfig configures the sqlite index
type IndexConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // "~" is expanded
	Workers  int    `yaml:"workers" mapstructure:"workers"`   // 0 means one per CPU
}

// LogConfig configures the stderr logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Backend names
const (
	BackendSource   = "source"
	BackendIndex    = "index"
	BackendPackages = "packages"
)

// DefaultPager is used when neither pager.command nor $PAGER is set
const DefaultPager = "less -R"

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Highlighter: HighlighterConfig{
			Command:           "gat",
			ForceColorInPager: true,
		},
		Pager: PagerConfig{
			Mode: "auto",
		},
		Selector: SelectorConfig{
			Command: "fzf",
			Mode:    "interactive",
		},
		Snippet: SnippetConfig{
			Mode: "range",
		},
		Locator: LocatorConfig{
			Backend: BackendSource,
			Ignore:  []string{},
		},
		Index: IndexConfig{
			Database: "~/.gogat/index.db",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
