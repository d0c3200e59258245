package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/tansive/spore/internal/common/schemavalidator"
	"github.com/tansive/spore/pkg/spore"
	"github.com/tansive/spore/pkg/spore/request"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config describes how the CLI builds its client. YAML is the default
// encoding; files ending in .toml are read and written as TOML.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" toml:"version"`
	// Spec is the path or URL of the API description
	Spec string `yaml:"spec,omitempty" toml:"spec,omitempty" json:"spec" validate:"required_without=OpenAPI"`
	// OpenAPI is an OpenAPI 3 document imported instead of Spec
	OpenAPI string `yaml:"openapi,omitempty" toml:"openapi,omitempty" json:"openapi"`
	// SpecVersion constrains the version of the loaded spec, e.g. ">= 1.0"
	SpecVersion string `yaml:"spec_version,omitempty" toml:"spec_version,omitempty" json:"spec_version" validate:"semverConstraint"`
	BaseURL     string `yaml:"base_url,omitempty" toml:"base_url,omitempty" json:"base_url" validate:"omitempty,url"`
	AccountID   string `yaml:"account_id,omitempty" toml:"account_id,omitempty" json:"account_id"`
	Format      string `yaml:"format,omitempty" toml:"format,omitempty" json:"format"`

	ApplicationKey string `yaml:"application_key,omitempty" toml:"application_key,omitempty" json:"application_key" validate:"required_with=PrivateKey"`
	PrivateKey     string `yaml:"private_key,omitempty" toml:"private_key,omitempty" json:"private_key" validate:"required_with=ApplicationKey"`
	UserEmail      string `yaml:"user_email,omitempty" toml:"user_email,omitempty" json:"user_email" validate:"omitempty,email"`
	// Password is used by login (stored for convenience)
	Password string `yaml:"password,omitempty" toml:"password,omitempty" json:"password"`
	// Token is the user token obtained by login
	Token string `yaml:"token,omitempty" toml:"token,omitempty" json:"token"`

	Timeout               string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout"`
	Retries               uint   `yaml:"retries,omitempty" toml:"retries,omitempty" json:"retries"`
	CookieDomainAttribute string `yaml:"cookie_domain_attribute,omitempty" toml:"cookie_domain_attribute,omitempty" json:"cookie_domain_attribute" validate:"omitempty,oneof=domain domaine"`

	Headers     []HeaderConfig           `yaml:"headers,omitempty" toml:"headers,omitempty" json:"headers" validate:"dive"`
	Middlewares []spore.MiddlewareConfig `yaml:"middlewares,omitempty" toml:"middlewares,omitempty" json:"middlewares"`
	Cookies     []request.Cookie         `yaml:"cookies,omitempty" toml:"cookies,omitempty" json:"cookies" validate:"dive"`
}

// HeaderConfig is a fixed header sent with every request.
type HeaderConfig struct {
	Name  string `yaml:"name" toml:"name" json:"name" validate:"required,headerName"`
	Value string `yaml:"value" toml:"value" json:"value"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/spore on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "spore", DefaultConfigFile), nil
}

func isTOML(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".toml")
}

// ReadConfig reads, expands and validates a config file.
func ReadConfig(file string) (*Config, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	raw, err = ExpandEnv(raw, filepath.Dir(file))
	if err != nil {
		return nil, err
	}

	var c Config
	if isTOML(file) {
		if _, err := toml.Decode(string(raw), &c); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	if err := c.ValidateConfig(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}
	c, err := ReadConfig(file)
	if err != nil {
		return err
	}
	config = c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to file, as TOML when the file ends
// in .toml and as YAML otherwise.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var out []byte
	if isTOML(file) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
		out = buf.Bytes()
	} else {
		out, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
	}

	err = os.WriteFile(file, out, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration
func (cfg *Config) ValidateConfig() error {
	if err := schemavalidator.V().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %s", schemavalidator.Describe(err))
	}
	if _, err := cfg.GetTimeout(); err != nil {
		return fmt.Errorf("invalid configuration: timeout: %w", err)
	}
	return nil
}

// GetTimeout returns the parsed request timeout, 0 when unset.
func (cfg *Config) GetTimeout() (time.Duration, error) {
	if cfg.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(cfg.Timeout)
}

// Print prints the current configuration in a human-readable format
func (cfg *Config) Print() {
	if cfg.Spec != "" {
		fmt.Printf("Spec: %s\n", cfg.Spec)
	} else {
		fmt.Printf("OpenAPI: %s\n", cfg.OpenAPI)
	}
	if cfg.BaseURL != "" {
		fmt.Printf("Base URL: %s\n", cfg.BaseURL)
	}
	if cfg.AccountID != "" {
		fmt.Printf("Account: %s\n", cfg.AccountID)
	}
	fmt.Printf("Signing: %t\n", cfg.ApplicationKey != "")
	fmt.Printf("Logged in: %t\n", cfg.Token != "")
}

// MorphBaseURL removes trailing slashes and adds https:// when no scheme is
// given.
func MorphBaseURL(baseURL string) string {
	if baseURL == "" {
		return baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	return baseURL
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration settings like the spec file and signing keys.

Examples:
  # Point the CLI at a spec file
  spore config --spec ./weborama.json

  # Use an OpenAPI document and override its server
  spore config --openapi ./openapi.yaml --base-url https://api.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specFlag, _ := cmd.Flags().GetString("spec")
		openapiFlag, _ := cmd.Flags().GetString("openapi")
		baseURLFlag, _ := cmd.Flags().GetString("base-url")
		if specFlag != "" || openapiFlag != "" {
			return setSpecConfig(specFlag, openapiFlag, baseURLFlag)
		}

		cmd.Help()
		return nil
	},
}

// configShowCmd prints the loaded configuration without secrets.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ReadConfig(configFile)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]any{
				"spec":       cfg.Spec,
				"openapi":    cfg.OpenAPI,
				"base_url":   cfg.BaseURL,
				"account_id": cfg.AccountID,
				"signing":    cfg.ApplicationKey != "",
				"logged_in":  cfg.Token != "",
			})
			return nil
		}
		cfg.Print()
		return nil
	},
}

// configClearCmd represents the config clear command
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the stored user token",
	Long: `Clear the user token stored by "spore login". The password and signing keys
are kept so that a new login can be made.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ReadConfig(configFile)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.New("spore config file not found. Configure spore with \"spore config --spec <file>\" first")
			}
			return fmt.Errorf("unable to load config file: %w", err)
		}
		cfg.Token = ""

		if err := cfg.WriteConfig(configFile); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			fmt.Println("Token cleared. Run \"spore login\" to get a new one")
		}

		return nil
	},
}

func init() {
	configCmd.Flags().String("spec", "", "Path or URL of the spec file (json or yaml)")
	configCmd.Flags().String("openapi", "", "Path of an OpenAPI 3 document")
	configCmd.Flags().String("base-url", "", "Override the base URL of the spec")

	configCmd.AddCommand(configClearCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// setSpecConfig writes a fresh config file pointing at a spec, keeping the
// keys of an existing config.
func setSpecConfig(specPath, openapiPath, baseURL string) error {
	cfg, err := ReadConfig(configFile)
	if err != nil {
		cfg = &Config{}
	}
	cfg.Version = "0.1.0"
	cfg.Spec = specPath
	cfg.OpenAPI = openapiPath
	cfg.BaseURL = MorphBaseURL(baseURL)
	cfg.Token = ""

	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"spec":        cfg.Spec + cfg.OpenAPI,
			"config_file": configFile,
		})
	} else {
		fmt.Printf("Spec configured: %s\n", cfg.Spec+cfg.OpenAPI)
		fmt.Printf("Config file: %s\n", configFile)
	}

	return nil
}
