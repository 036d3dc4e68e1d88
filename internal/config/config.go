package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment string `mapstructure:"environment"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`

	Redis struct {
		Enable    bool          `mapstructure:"enable"`
		Addr      string        `mapstructure:"addr"`
		Password  string        `mapstructure:"password"`
		DB        int           `mapstructure:"db"`
		StatusTTL time.Duration `mapstructure:"status_ttl"`
	} `mapstructure:"redis"`

	Engine struct {
		// BaseURL overrides the base URL extracted from the API reference.
		BaseURL string `mapstructure:"base_url"`
		// ServiceKey is the static credential sent in the engine auth header.
		ServiceKey string `mapstructure:"service_key"`
		// WorkflowID overrides the schema document's workflow identifier.
		WorkflowID string `mapstructure:"workflow_id"`
		// DocsPath locates the markdown API reference the capability
		// resolver parses.
		DocsPath string `mapstructure:"docs_path"`
	} `mapstructure:"engine"`

	Workflow struct {
		// SchemaPaths are candidate locations of the workflow schema document.
		SchemaPaths []string `mapstructure:"schema_paths"`
	} `mapstructure:"workflow"`

	Storage struct {
		// DocumentsDir is the local root for uploaded vendor documents.
		DocumentsDir string `mapstructure:"documents_dir"`
	} `mapstructure:"storage"`

	Auth struct {
		Issuer        string `mapstructure:"issuer"`
		ClientID      string `mapstructure:"client_id"`
		ClientSecret  string `mapstructure:"client_secret"`
		RedirectURL   string `mapstructure:"redirect_url"`
		DevModeBypass bool   `mapstructure:"dev_mode_bypass"`
	} `mapstructure:"auth"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Auth.Issuer = normalizeIssuer(config.Auth.Issuer)
	if config.Engine.DocsPath == "" {
		config.Engine.DocsPath = "documentation/agents/review-engine-api.md"
	}
	if config.Storage.DocumentsDir == "" {
		config.Storage.DocumentsDir = "data/vendor-docs"
	}

	return &config, nil
}

// normalizeIssuer ensures the provided OIDC issuer string is in a
// predictable form. It removes any trailing slash and leaves the scheme and
// path intact, so users can paste the full URL from their IdP console.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	if strings.HasSuffix(iss, "/") {
		iss = strings.TrimRight(iss, "/")
	}
	return iss
}
