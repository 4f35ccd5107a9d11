package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// ErrUnknownKey is returned by Config.Get and Config.Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	Editor EditorConfig      `yaml:"editor"`
	Index  IndexConfig       `yaml:"index"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for dn serve.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required)),
	)
}

// NotesConfig holds the note directory and the notebook given to new notes.
type NotesConfig struct {
	Path            string `yaml:"path"`
	DefaultNotebook string `yaml:"default_notebook"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.DefaultNotebook, validation.Required, validation.By(singleLine)),
	)
}

// EditorConfig holds the commands used to edit and view notes. Both are
// split on whitespace; the note path is appended as the last argument.
type EditorConfig struct {
	Command string `yaml:"command"`
	Viewer  string `yaml:"viewer"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Command, validation.Required),
		validation.Field(&c.Viewer, validation.Required),
	)
}

// IndexConfig holds the index cache location.
//
// With Strict set, resolving an ordinal fails when the note directory changed
// after the listing that assigned it.
type IndexConfig struct {
	Path   string `yaml:"path"`
	Strict bool   `yaml:"strict"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for dn serve.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

func singleLine(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must be a single line")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Path:            filepath.Join(home, ".donno", "repo"),
			DefaultNotebook: "/Misc",
		},
		Editor: EditorConfig{
			Command: "nvim",
			Viewer:  "nvim -R",
		},
		Index: IndexConfig{
			Path: filepath.Join(stateHome(home), "donno", "index.db"),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("config", "donno.yaml")
	}
	return filepath.Join(dir, "donno", "config.yaml")
}

func stateHome(home string) string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(home, ".local", "state")
}

// configKey binds a dotted key to one scalar field.
type configKey struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringKey(field func(*Config) *string) configKey {
	return configKey{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

var configKeys = map[string]configKey{
	"app.log_level": {
		get: func(c *Config) string { return c.App.LogLevel.String() },
		set: func(c *Config, v string) error { return c.App.LogLevel.UnmarshalText([]byte(v)) },
	},
	"app.http.port": {
		get: func(c *Config) string { return strconv.Itoa(c.App.HTTP.Port) },
		set: func(c *Config, v string) error {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("port: %w", err)
			}
			c.App.HTTP.Port = port
			return nil
		},
	},
	"app.http.cors_origins": {
		get: func(c *Config) string { return strings.Join(c.App.HTTP.CORSOrigins, ",") },
		set: func(c *Config, v string) error {
			origins := lo.Map(strings.Split(v, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
			c.App.HTTP.CORSOrigins = lo.Filter(origins, func(s string, _ int) bool { return s != "" })
			return nil
		},
	},
	"notes.path":             stringKey(func(c *Config) *string { return &c.Notes.Path }),
	"notes.default_notebook": stringKey(func(c *Config) *string { return &c.Notes.DefaultNotebook }),
	"editor.command":         stringKey(func(c *Config) *string { return &c.Editor.Command }),
	"editor.viewer":          stringKey(func(c *Config) *string { return &c.Editor.Viewer }),
	"index.path":             stringKey(func(c *Config) *string { return &c.Index.Path }),
	"index.strict": {
		get: func(c *Config) string { return strconv.FormatBool(c.Index.Strict) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("strict: %w", err)
			}
			c.Index.Strict = b
			return nil
		},
	},
	"auth.mode":  stringKey(func(c *Config) *string { return &c.Auth.Mode }),
	"auth.token": stringKey(func(c *Config) *string { return &c.Auth.Token }),
}

// Keys returns every settable configuration key, sorted.
func Keys() []string {
	keys := lo.Keys(configKeys)
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted configuration key.
func (c *Config) Get(key string) (string, error) {
	k, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return k.get(c), nil
}

// Set assigns a dotted configuration key and re-validates the result. On
// error the config is left unchanged.
func (c *Config) Set(key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	next := *c
	next.App.HTTP.CORSOrigins = append([]string(nil), c.App.HTTP.CORSOrigins...)
	if err := k.set(&next, value); err != nil {
		return fmt.Errorf("config: set %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("config: set %s: %w", key, err)
	}
	*c = next
	return nil
}
