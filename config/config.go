package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds panel and coordinator configuration
type Config struct {
	// Panel side
	PanelHost      string // Host of the page serving the panel; the transport dials this host
	WSPort         int
	WSPath         string
	CoordinatorURL string
	STTURL         string
	TTSURL         string // Also the origin that serves synthesized audio
	IoTURL         string
	OllamaURL      string
	AudioPlayer    string // Command template, "{url}" is replaced by the audio locator
	HTTPTimeout    time.Duration

	// Coordinator side
	Port           int
	RedisURL       string
	RedisPassword  string
	MaxClients     int
	ClientTimeout  time.Duration
	AllowedOrigins []string
	LLMBackend     string // "ollama" or "gemini"
	OllamaModel    string
	GeminiAPIKey   string
	GeminiModel    string
}

// Default returns the configuration used when no environment overrides are set
func Default() *Config {
	return &Config{
		PanelHost:      "localhost",
		WSPort:         8080,
		WSPath:         "/ws",
		CoordinatorURL: "http://localhost:8080",
		STTURL:         "http://localhost:8000",
		TTSURL:         "http://localhost:8001",
		IoTURL:         "http://localhost:8002",
		OllamaURL:      "http://localhost:11434",
		HTTPTimeout:    30 * time.Second,

		Port:           8080,
		RedisURL:       "localhost:6379",
		MaxClients:     100,
		ClientTimeout:  30 * time.Minute,
		AllowedOrigins: []string{"*"},
		LLMBackend:     "ollama",
		OllamaModel:    "llama3",
		GeminiModel:    "gemini-2.5-flash",
	}
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := Default()

	if host := os.Getenv("PANEL_HOST"); host != "" {
		config.PanelHost = host
	}

	if port := os.Getenv("WS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid WS_PORT: %w", err)
		}
		config.WSPort = p
	}

	if path := os.Getenv("WS_PATH"); path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		config.WSPath = path
	}

	for key, dst := range map[string]*string{
		"COORDINATOR_URL": &config.CoordinatorURL,
		"STT_URL":         &config.STTURL,
		"TTS_URL":         &config.TTSURL,
		"IOT_URL":         &config.IoTURL,
		"OLLAMA_URL":      &config.OllamaURL,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if _, err := url.ParseRequestURI(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = strings.TrimRight(v, "/")
	}

	// Optional: AUDIO_PLAYER (empty keeps autoplay disabled)
	config.AudioPlayer = os.Getenv("AUDIO_PLAYER")

	// Optional: HTTP_TIMEOUT (in seconds)
	if timeout := os.Getenv("HTTP_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		config.HTTPTimeout = time.Duration(t) * time.Second
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	if maxClients := os.Getenv("MAX_CLIENTS"); maxClients != "" {
		m, err := strconv.Atoi(maxClients)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_CLIENTS: %w", err)
		}
		config.MaxClients = m
	}

	// Optional: CLIENT_TIMEOUT (in minutes)
	if timeout := os.Getenv("CLIENT_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid CLIENT_TIMEOUT: %w", err)
		}
		config.ClientTimeout = time.Duration(t) * time.Minute
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		config.OllamaModel = model
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// Optional: LLM_BACKEND ("ollama" or "gemini")
	if backend := os.Getenv("LLM_BACKEND"); backend != "" {
		switch backend {
		case "ollama", "gemini":
			config.LLMBackend = backend
		default:
			return nil, fmt.Errorf("invalid LLM_BACKEND: must be 'ollama' or 'gemini'")
		}
	}
	if config.LLMBackend == "gemini" && config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required for the gemini backend")
	}

	return config, nil
}

// Endpoint returns the coordinator transport address, ws://<page-host>:<port><path>
func (c *Config) Endpoint() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(c.PanelHost, strconv.Itoa(c.WSPort)),
		Path:   c.WSPath,
	}
	return u.String()
}

// AudioBase returns the HTTP origin that serves synthesized audio files
func (c *Config) AudioBase() string {
	return c.TTSURL
}
