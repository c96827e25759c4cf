// Package config loads the effwatch configuration: a YAML file for
// rules and endpoints, with environment variables overriding secrets so
// credentials can stay out of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mbellini/effwatch/internal/domain"
	"github.com/mbellini/effwatch/internal/notify"
	"github.com/mbellini/effwatch/internal/telemetry"
)

// Config is the immutable per-run configuration threaded through the
// pipeline. Nothing reads ambient global state after loading.
type Config struct {
	ActivityWatch ActivityWatch `yaml:"activitywatch"`
	AI            AI            `yaml:"ai"`
	Output        Output        `yaml:"output"`
	// Category rules are an ordered list: rule order is match
	// priority, so a YAML mapping would not do.
	Categories     []domain.CategoryRule `yaml:"categories"`
	EditorWatchers []string              `yaml:"editor_watchers"`
	Notify         Notify                `yaml:"notify"`
	Store          Store                 `yaml:"store"`
	Telemetry      telemetry.Config      `yaml:"telemetry"`
}

// ActivityWatch points at the tracking daemon.
type ActivityWatch struct {
	Host           string `yaml:"host"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a ActivityWatch) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// AI configures the narrative service.
type AI struct {
	APIBase        string  `yaml:"api_base"`
	APIKey         string  `yaml:"api_key" json:"-"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the narrative call timeout as a duration.
func (a AI) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Output configures report persistence.
type Output struct {
	ReportsDir string `yaml:"reports_dir"`
}

// Notify configures the notification channels.
type Notify struct {
	Enabled bool `yaml:"enabled"`
	Bot     struct {
		Enabled bool `yaml:"enabled"`
		notify.BotConfig `yaml:",inline"`
	} `yaml:"bot"`
	Email struct {
		Enabled bool `yaml:"enabled"`
		notify.EmailConfig `yaml:",inline"`
	} `yaml:"email"`
	Desktop struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"desktop"`
}

// Store configures the snapshot database.
type Store struct {
	DatabaseURL string `yaml:"database_url" envconfig:"TURSO_DATABASE_URL"`
	AuthToken   string `yaml:"auth_token" envconfig:"TURSO_AUTH_TOKEN" json:"-"`
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	return &Config{
		ActivityWatch: ActivityWatch{
			Host:           "http://localhost:5600",
			TimeoutSeconds: 30,
		},
		AI: AI{
			APIBase:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			MaxTokens:      2000,
			Temperature:    0.7,
			TimeoutSeconds: 120,
		},
		Output: Output{ReportsDir: "./reports"},
		Categories: []domain.CategoryRule{
			{Name: "coding", Patterns: []string{"VS Code", "Code", "PyCharm", "IntelliJ", "WebStorm", "Xcode", "Terminal", "iTerm", "Cursor"}},
			{Name: "browser", Patterns: []string{"Chrome", "Safari", "Firefox", "Arc", "Edge"}},
			{Name: "communication", Patterns: []string{"Slack", "Zoom", "Teams", "Messages", "Discord"}},
			{Name: "writing", Patterns: []string{"Notion", "Obsidian", "Word", "Pages", "Typora", "Bear"}},
		},
		EditorWatchers: []string{
			"aw-watcher-vscode",
			"aw-watcher-pycharm",
			"aw-watcher-intellij",
			"aw-watcher-webstorm",
		},
		Store: Store{DatabaseURL: "file:effwatch.db"},
	}
}

// Load reads the config file, falling back to defaults when it is
// missing, then applies environment overrides and validates. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only; the caller warns.
	case err != nil:
		return nil, &domain.ConfigError{Field: "config", Reason: err.Error()}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Field: "config", Reason: fmt.Sprintf("parsing %s: %v", path, err)}
		}
	}

	if err := envconfig.Process("", &cfg.Store); err != nil {
		return nil, &domain.ConfigError{Field: "store", Reason: err.Error()}
	}
	cfg.Telemetry = cfg.Telemetry.FromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ActivityWatch.Host == "" {
		return &domain.ConfigError{Field: "activitywatch.host", Reason: "must not be empty"}
	}
	if c.Output.ReportsDir == "" {
		return &domain.ConfigError{Field: "output.reports_dir", Reason: "must not be empty"}
	}
	if c.Store.DatabaseURL == "" {
		return &domain.ConfigError{Field: "store.database_url", Reason: "must not be empty"}
	}
	for i, rule := range c.Categories {
		if rule.Name == "" {
			return &domain.ConfigError{Field: "categories", Reason: fmt.Sprintf("rule %d has no name", i)}
		}
	}
	return nil
}

// Notifiers builds the enabled notification channels.
func (c *Config) Notifiers() []notify.Notifier {
	if !c.Notify.Enabled {
		return nil
	}
	var out []notify.Notifier
	if c.Notify.Bot.Enabled {
		out = append(out, notify.NewBotNotifier(c.Notify.Bot.BotConfig))
	}
	if c.Notify.Email.Enabled {
		out = append(out, notify.NewEmailNotifier(c.Notify.Email.EmailConfig))
	}
	if c.Notify.Desktop.Enabled {
		out = append(out, notify.NewDesktopNotifier())
	}
	return out
}
