package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces CLI environment variables, e.g. FINTRACK_API_URL.
const EnvPrefix = "FINTRACK"

// Client is the CLI configuration.
type Client struct {
	APIURL         string        `mapstructure:"api_url"`
	TokenFile      string        `mapstructure:"token_file"`
	Currency       string        `mapstructure:"currency"`
	Format         string        `mapstructure:"format"`
	OutputDir      string        `mapstructure:"output_dir"`
	CategoriesFile string        `mapstructure:"categories_file"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// NewViper returns a viper instance with CLI defaults and environment
// binding. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("api_url", "http://localhost:8081/api/v1")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("currency", "K")
	v.SetDefault("format", "pdf")
	v.SetDefault("output_dir", ".")
	v.SetDefault("categories_file", "")
	v.SetDefault("timeout", 30*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadClient reads configPath if given, otherwise looks for config.yaml in
// the user config directory and the working directory. A missing default
// file is not an error.
func LoadClient(v *viper.Viper, configPath string) (*Client, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "fintrack"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Validate() error {
	var errors []string
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid api_url '%s'", c.APIURL))
	}
	switch strings.ToLower(c.Format) {
	case "pdf", "html", "chrome":
	default:
		errors = append(errors, fmt.Sprintf("invalid format '%s': must be pdf, html or chrome", c.Format))
	}
	if c.TokenFile == "" {
		errors = append(errors, "token_file cannot be empty")
	}
	if c.Timeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid timeout %v: must be positive", c.Timeout))
	}
	return joinErrors(errors)
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fintrack-token.json"
	}
	return filepath.Join(dir, "fintrack", "token.json")
}
