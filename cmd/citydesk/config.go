package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/provider/anthropic"
	"github.com/spetersoncode/citydesk/provider/google"
	"github.com/spetersoncode/citydesk/provider/openai"
)

// Config holds settings loaded from the environment.
type Config struct {
	DBPath   string
	LogLevel string

	// Provider selection
	Provider string
	Model    string

	// API keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string

	// Azure OpenAI. An empty key uses the default Azure credential chain.
	AzureEndpoint   string
	AzureDeployment string
	AzureKey        string
	AzureAPIVersion string

	Timeout time.Duration
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when one exists.
func LoadConfig() *Config {
	godotenv.Load()

	return &Config{
		DBPath:          getEnvOrDefault("CITYDESK_DB", defaultDBPath()),
		LogLevel:        getEnvOrDefault("CITYDESK_LOG_LEVEL", "warn"),
		Provider:        getEnvOrDefault("MODEL_PROVIDER", string(ai.ProviderAnthropic)),
		Model:           os.Getenv("MODEL_NAME"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleKey:       os.Getenv("GOOGLE_API_KEY"),
		AzureEndpoint:   os.Getenv("ENDPOINT_URL"),
		AzureDeployment: os.Getenv("DEPLOYMENT_NAME"),
		AzureKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureAPIVersion: getEnvOrDefault("API_VERSION", openai.DefaultAzureAPIVersion),
		Timeout:         getEnvDurationOrDefault("CITYDESK_TIMEOUT", 2*time.Minute),
	}
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	p, err := ai.ParseProvider(c.Provider)
	if err != nil {
		return fmt.Errorf("MODEL_PROVIDER: %w", err)
	}

	switch p {
	case ai.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ai.ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ai.ProviderAzure:
		if c.AzureEndpoint == "" || c.AzureDeployment == "" {
			return fmt.Errorf("ENDPOINT_URL and DEPLOYMENT_NAME are required for the azure provider")
		}
	case ai.ProviderGoogle:
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for the google provider")
		}
	}
	return nil
}

// NewProvider builds the configured chat provider.
func (c *Config) NewProvider(ctx context.Context) (ai.ChatProvider, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch ai.Provider(c.Provider) {
	case ai.ProviderAnthropic:
		return anthropic.New(c.AnthropicKey, anthropic.WithModel(c.Model)), nil
	case ai.ProviderOpenAI:
		return openai.New(c.OpenAIKey, openai.WithModel(c.Model)), nil
	case ai.ProviderAzure:
		return openai.NewAzure(c.AzureEndpoint, c.AzureDeployment, c.AzureAPIVersion, c.AzureKey)
	default:
		return google.New(ctx, c.GoogleKey, google.WithModel(c.Model))
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "citydesk.db"
	}
	return filepath.Join(home, ".citydesk", "sessions.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
