// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
)

// AppConfig holds every setting read from the environment.
type AppConfig struct {
	Port    string `json:"port"`
	AppEnv  string `json:"app_env"`
	DataDir string `json:"data_dir"`

	LLMProvider    string                       `json:"llm_provider"`
	LLMTimeout     time.Duration                `json:"llm_timeout"`
	LLMTemperature float32                      `json:"llm_temperature"`
	LLMConfig      map[string]map[string]string `json:"-"`

	RateLimitRequests int           `json:"rate_limit_requests"`
	RateLimitWindow   time.Duration `json:"rate_limit_window"`
	RedisAddr         string        `json:"redis_addr,omitempty"`

	DatabaseURL        string `json:"-"`
	DiagnosticsEnabled bool   `json:"diagnostics_enabled"`
	PolicyFile         string `json:"policy_file,omitempty"`
	OTelEnabled        bool   `json:"otel_enabled"`

	// Warnings lists values that were invalid and replaced by defaults.
	Warnings []string `json:"-"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	c := &AppConfig{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      strings.ToLower(getEnv("APP_ENV", "production")),
		DataDir:     getEnv("DATA_DIR", "data"),
		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", "cohere")),
		LLMConfig: map[string]map[string]string{
			"cohere": {
				"api_key":       getEnv("COHERE_API_KEY", ""),
				"default_model": getEnv("COHERE_MODEL", "command-a-03-2025"),
			},
			"ollama": {
				"base_url":      getEnv("OLLAMA_HOST", "http://localhost:11434"),
				"default_model": getEnv("OLLAMA_MODEL", "mistral"),
			},
			"gemini": {
				"api_key":       getEnv("GEMINI_API_KEY", ""),
				"default_model": getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			},
		},
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		PolicyFile:  getEnv("POLICY_FILE", ""),
	}
	c.LLMConfig["ollama-mistral"] = c.LLMConfig["ollama"]

	c.LLMTimeout = time.Duration(c.getEnvInt("LLM_TIMEOUT_MS", 240000)) * time.Millisecond
	c.LLMTemperature = float32(c.getEnvFloat("LLM_TEMPERATURE", 0.2))
	c.RateLimitRequests = c.getEnvInt("RATE_LIMIT_REQUESTS", 10)
	c.RateLimitWindow = c.getEnvDuration("RATE_LIMIT_WINDOW", time.Minute)
	c.DiagnosticsEnabled = getEnvBool("DIAGNOSTICS_ENABLED", true)
	c.OTelEnabled = getEnvBool("OTEL_ENABLED", false)

	if c.LLMTimeout <= 0 {
		c.warn("LLM_TIMEOUT_MS must be positive, using 240000")
		c.LLMTimeout = 240 * time.Second
	}
	if c.RateLimitRequests <= 0 {
		c.warn("RATE_LIMIT_REQUESTS must be positive, using 10")
		c.RateLimitRequests = 10
	}
	if _, ok := c.LLMConfig[c.LLMProvider]; !ok {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	return c, nil
}

// InitConfig loads the configuration and makes it current.
func InitConfig() (*AppConfig, error) {
	c, err := Load()
	if err != nil {
		return nil, err
	}
	SetCurrentConfig(c)
	return c, nil
}

// SetCurrentConfig replaces the current snapshot.
func SetCurrentConfig(c *AppConfig) {
	configMutex.Lock()
	defer configMutex.Unlock()
	currentConfig = c
}

// GetCurrentConfig returns a copy of the current snapshot, loading it from
// the environment on first use.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	c := currentConfig
	configMutex.RUnlock()

	if c == nil {
		loaded, err := Load()
		if err != nil {
			loaded = &AppConfig{Port: "8080", LLMProvider: "cohere", LLMTimeout: 240 * time.Second}
		}
		c = loaded
	}
	configCopy := *c
	return &configCopy
}

// IsDevelopment reports whether APP_ENV selects development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// ProviderConfig returns a copy of the settings for provider name.
func (c *AppConfig) ProviderConfig(name string) map[string]string {
	out := map[string]string{}
	for k, v := range c.LLMConfig[name] {
		out[k] = v
	}
	return out
}

func (c *AppConfig) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes" || value == "on"
}

func (c *AppConfig) getEnvInt(key string, defaultValue int) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		c.warn("invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func (c *AppConfig) getEnvFloat(key string, defaultValue float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		c.warn("invalid %s=%q, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func (c *AppConfig) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		c.warn("invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
