package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	nsmslog "github.com/msto63/nsms/foundation/core/log"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "NSMS_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Storage StorageConfig `toml:"storage"`
	Parser  ParserConfig  `toml:"parser"`
	Router  RouterConfig  `toml:"router"`
	GRPC    GRPCConfig    `toml:"grpc"`
	Text    TextConfig    `toml:"text"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	DataDir     string `toml:"data_dir"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
}

// StorageConfig locates the SQLite database shared by all stores.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ParserConfig holds the tokenizer settings used for inbound messages.
type ParserConfig struct {
	// Separators lists extra separator runes. Space is always a separator.
	Separators string `toml:"separators"`
}

// RouterConfig holds the HTTP router settings
type RouterConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	DefaultBackend string   `toml:"default_backend"`
	UnsentAfter    Duration `toml:"unsent_after"`
}

// GRPCConfig holds the gRPC health endpoint settings
type GRPCConfig struct {
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	EnableReflection bool   `toml:"enable_reflection"`
}

// TextConfig holds the reply text settings
type TextConfig struct {
	LocalesDir    string `toml:"locales_dir"`
	DefaultLocale string `toml:"default_locale"`
	Locale        string `toml:"locale"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nsmserror.New("config file not found: " + path).
			WithCode(nsmserror.CodeConfigError).
			WithOperation("config.Load")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, nsmserror.Wrap(err, "failed to parse config").
			WithCode(nsmserror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by NSMS_CONFIG or the first file found
// in the default locations.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		home, _ := os.UserHomeDir()
		defaultPaths := []string{
			"./configs/config.toml",
			"./config.toml",
			filepath.Join(home, ".config/nsms/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, nsmserror.New("no config file found, set " + EnvConfigPath + " or create configs/config.toml").
			WithCode(nsmserror.CodeConfigError).
			WithOperation("config.LoadFromEnv")
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "nsms"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Parser.Separators == "" {
		c.Parser.Separators = ","
	}

	if c.Router.Host == "" {
		c.Router.Host = "0.0.0.0"
	}
	if c.Router.Port == 0 {
		c.Router.Port = 8080
	}
	if c.Router.ReadTimeout.Duration == 0 {
		c.Router.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Router.WriteTimeout.Duration == 0 {
		c.Router.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Router.DefaultBackend == "" {
		c.Router.DefaultBackend = "tester"
	}
	if c.Router.UnsentAfter.Duration == 0 {
		c.Router.UnsentAfter.Duration = 30 * time.Second
	}

	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}

	if c.Text.DefaultLocale == "" {
		c.Text.DefaultLocale = "en"
	}
	if c.Text.Locale == "" {
		c.Text.Locale = c.Text.DefaultLocale
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Text.LocalesDir = os.ExpandEnv(c.Text.LocalesDir)
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	invalid := func(field, reason string) error {
		return nsmserror.New(fmt.Sprintf("invalid %s: %s", field, reason)).
			WithCode(nsmserror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("field", field)
	}

	if _, err := nsmslog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel)
	}
	if _, err := nsmslog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("general.log_format", c.General.LogFormat)
	}
	if !utf8.ValidString(c.Parser.Separators) {
		return invalid("parser.separators", "not valid UTF-8")
	}
	// The tester is the only backend registered at startup; it keeps a
	// name containing "tester" as is, so the default must be such a name.
	if !strings.Contains(c.Router.DefaultBackend, "tester") {
		return invalid("router.default_backend", fmt.Sprintf("%q is not a tester backend name", c.Router.DefaultBackend))
	}
	if c.Router.Port < 1 || c.Router.Port > 65535 {
		return invalid("router.port", fmt.Sprint(c.Router.Port))
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return invalid("grpc.port", fmt.Sprint(c.GRPC.Port))
	}
	if c.Router.Port == c.GRPC.Port && c.Router.Host == c.GRPC.Host {
		return invalid("grpc.port", "collides with router.port")
	}
	return nil
}

// DatabasePath returns the SQLite file used by all stores.
func (c *Config) DatabasePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.General.DataDir, "nsms.db")
}

// SeparatorRunes returns the configured extra separators.
func (c *Config) SeparatorRunes() []rune {
	return []rune(c.Parser.Separators)
}

// RouterAddress returns host:port of the HTTP router.
func (c *Config) RouterAddress() string {
	return fmt.Sprintf("%s:%d", c.Router.Host, c.Router.Port)
}

// GRPCAddress returns host:port of the gRPC endpoint.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
