package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Catalog  CatalogConfig
	Chat     ChatConfig
	Identity IdentityConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalogConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		Catalog:  cat,
		Chat:     chatCfg,
		Identity: loadIdentityConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Ark-backed chat gateway.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance for the given model id. The
// "auto" sentinel and the empty string route to the configured default.
func (c AIConfig) NewChatModel(ctx context.Context, modelID string) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL, or AK/SK")
	}

	if modelID == "" || modelID == "auto" {
		modelID = c.Model
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       modelID,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// CatalogConfig describes where the persona/model catalog comes from.
// An empty URL selects the built-in seed catalog.
type CatalogConfig struct {
	URL     string
	Timeout time.Duration
}

func loadCatalogConfig() (CatalogConfig, error) {
	timeout := 10 * time.Second
	if override, err := parseOptionalIntEnv("CATALOG_TIMEOUT_SECONDS"); err != nil {
		return CatalogConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return CatalogConfig{}, fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive")
		}
		timeout = time.Duration(*override) * time.Second
	}

	return CatalogConfig{
		URL:     strings.TrimSpace(os.Getenv("CATALOG_URL")),
		Timeout: timeout,
	}, nil
}

// ChatConfig tunes orchestrator behavior.
type ChatConfig struct {
	DefaultPersonaID string
	TitleDelay       time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	delay := 60 * time.Second
	if override, err := parseOptionalIntEnv("TITLE_DELAY_SECONDS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("TITLE_DELAY_SECONDS must be positive")
		}
		delay = time.Duration(*override) * time.Second
	}

	return ChatConfig{
		DefaultPersonaID: getEnvOrDefault("DEFAULT_PERSONA", "ashley-girlfriend"),
		TitleDelay:       delay,
	}, nil
}

// IdentityConfig stands in for the external auth provider.
type IdentityConfig struct {
	UserID           string
	DefaultPersonaID string
	NSFWAllowed      bool
}

func loadIdentityConfig() IdentityConfig {
	nsfw, err := parseBoolEnv("AUTH_NSFW_ALLOWED", false)
	if err != nil {
		nsfw = false
	}
	return IdentityConfig{
		UserID:           getEnvOrDefault("AUTH_USER_ID", "local-user"),
		DefaultPersonaID: strings.TrimSpace(os.Getenv("AUTH_DEFAULT_PERSONA")),
		NSFWAllowed:      nsfw,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
