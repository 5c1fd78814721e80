package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment    string
	HTTPAddr       string
	EnvFile        string
	EnvFileLoaded  bool
	SessionBackend string // memory | sqlite
	SQLiteDSN      string
	MaxHistory     int
	TemplateDir    string
	ServerURL      string
	WebSocket      bool
	MCPHTTP        bool

	LLMProvider   string // openai | anthropic
	LLMTimeoutSec int

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIImageModel string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
}

// FromEnv resolves every value from the process environment first and then
// from the env file named by QUANTUMX_ENV_FILE (default .env).
func FromEnv() Config {
	envFile := strings.TrimSpace(os.Getenv("QUANTUMX_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	src, loaded := newSource(envFile)

	return Config{
		Environment:    src.stringOrDefault("QUANTUMX_ENV", "development"),
		HTTPAddr:       src.stringOrDefault("QUANTUMX_HTTP_ADDR", ":8000"),
		EnvFile:        envFile,
		EnvFileLoaded:  loaded,
		SessionBackend: src.choiceOrDefault("QUANTUMX_SESSION_BACKEND", "memory", "memory", "sqlite"),
		SQLiteDSN:      src.stringOrDefault("QUANTUMX_SQLITE_DSN", "file:quantumx?mode=memory&cache=shared"),
		MaxHistory:     src.intOrDefault("QUANTUMX_MAX_HISTORY", 20),
		TemplateDir:    src.stringOrDefault("QUANTUMX_TEMPLATE_DIR", ""),
		ServerURL:      src.stringOrDefault("QUANTUMX_SERVER_URL", "http://localhost:8000"),
		WebSocket:      src.boolOrDefault("QUANTUMX_WEBSOCKET_ENABLED", true),
		MCPHTTP:        src.boolOrDefault("QUANTUMX_MCP_HTTP_ENABLED", false),

		LLMProvider:   src.choiceOrDefault("QUANTUMX_LLM_PROVIDER", "openai", "openai", "anthropic"),
		LLMTimeoutSec: src.intOrDefault("QUANTUMX_LLM_TIMEOUT_SECONDS", 60),

		OpenAIAPIKey:     src.stringOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    src.stringOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      src.stringOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: src.stringOrDefault("OPENAI_IMAGE_MODEL", "gpt-image-1"),

		AnthropicAPIKey:  src.stringOrDefault("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL: src.stringOrDefault("ANTHROPIC_BASE_URL", ""),
		AnthropicModel:   src.stringOrDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
	}
}

type source struct {
	file map[string]string
}

// newSource reads path with godotenv. A missing or unreadable file leaves
// only the process environment.
func newSource(path string) (source, bool) {
	values, err := godotenv.Read(path)
	if err != nil {
		return source{file: map[string]string{}}, false
	}
	return source{file: values}, true
}

func (s source) lookup(name string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return strings.TrimSpace(s.file[name])
}

func (s source) stringOrDefault(name, fallback string) string {
	value := s.lookup(name)
	if value == "" {
		return fallback
	}
	return value
}

func (s source) intOrDefault(name string, fallback int) int {
	value := s.lookup(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func (s source) boolOrDefault(name string, fallback bool) bool {
	switch strings.ToLower(s.lookup(name)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func (s source) choiceOrDefault(name, fallback string, allowed ...string) string {
	value := strings.ToLower(s.lookup(name))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}
