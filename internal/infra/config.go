package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DispatchModeInline = "inline"
	DispatchModeAMQP   = "amqp"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	PublicBaseURL      string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int

	// GenerateTimeout bounds a synchronous web generation.
	GenerateTimeout time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string

	MiniMaxAPIKey       string
	MiniMaxBaseURL      string
	MiniMaxModel        string
	MiniMaxPollInterval time.Duration
	MiniMaxPollAttempts int
	ReplicateAPIToken   string
	ReplicateModel      string
	ModelsLabAPIKey     string
	ModelsLabBaseURL    string
	StaticFallbackURL   string

	TwilioAccountSID        string
	TwilioAuthToken         string
	TwilioWhatsAppFrom      string
	TwilioValidateSignature bool

	RedisURL           string
	ConversationWindow int
	ConversationTTL    time.Duration
	HistoryLimit       int
	ChatTimezone       string
	SupportContact     string

	DispatchMode      string
	DispatchWorkers   int
	DispatchQueueSize int
	AMQPURL           string
	AMQPExchange      string
	AMQPQueue         string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		PublicBaseURL:      strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:     os.Getenv("OPENAI_ORG"),

		MiniMaxAPIKey:       os.Getenv("MINIMAX_API_KEY"),
		MiniMaxBaseURL:      getEnv("MINIMAX_BASE_URL", "https://api.minimax.io"),
		MiniMaxModel:        getEnv("MINIMAX_MODEL", "MiniMax-Hailuo-02"),
		MiniMaxPollInterval: time.Second * time.Duration(getEnvInt("MINIMAX_POLL_INTERVAL_SECONDS", 10)),
		MiniMaxPollAttempts: getEnvInt("MINIMAX_POLL_ATTEMPTS", 30),
		ReplicateAPIToken:   os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateModel:      getEnv("REPLICATE_MODEL", "anotherjesse/zeroscope-v2-xl:9f747673945c62801b13b84701c783929c0ee784e4748ec062204894dda1a351"),
		ModelsLabAPIKey:     os.Getenv("MODELSLAB_API_KEY"),
		ModelsLabBaseURL:    getEnv("MODELSLAB_BASE_URL", "https://modelslab.com/api/v6"),
		StaticFallbackURL:   getEnv("STATIC_FALLBACK_VIDEO_URL", "https://www.w3schools.com/html/mov_bbb.mp4"),

		TwilioAccountSID:        os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:         os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:      getEnv("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
		TwilioValidateSignature: getEnvBool("TWILIO_VALIDATE_SIGNATURE", false),

		RedisURL:           os.Getenv("REDIS_URL"),
		ConversationWindow: getEnvInt("CONVERSATION_WINDOW", 3),
		ConversationTTL:    time.Hour * time.Duration(getEnvInt("CONVERSATION_TTL_HOURS", 24)),
		HistoryLimit:       getEnvInt("HISTORY_LIMIT", 10),
		ChatTimezone:       getEnv("CHAT_TIMEZONE", "UTC"),
		SupportContact:     os.Getenv("SUPPORT_CONTACT"),

		DispatchMode:      strings.ToLower(getEnv("DISPATCH_MODE", DispatchModeInline)),
		DispatchWorkers:   getEnvInt("DISPATCH_WORKERS", 4),
		DispatchQueueSize: getEnvInt("DISPATCH_QUEUE_SIZE", 64),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "makevideo"),
		AMQPQueue:         getEnv("AMQP_QUEUE", "makevideo.generate"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.DispatchMode {
	case DispatchModeInline:
	case DispatchModeAMQP:
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("AMQP_URL is required when DISPATCH_MODE=%s", DispatchModeAMQP)
		}
	default:
		return nil, fmt.Errorf("unsupported DISPATCH_MODE %q", cfg.DispatchMode)
	}

	if cfg.TwilioValidateSignature && (cfg.TwilioAuthToken == "" || cfg.PublicBaseURL == "") {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN and PUBLIC_BASE_URL are required to validate webhook signatures")
	}

	if _, err := time.LoadLocation(cfg.ChatTimezone); err != nil {
		return nil, fmt.Errorf("invalid CHAT_TIMEZONE %q: %w", cfg.ChatTimezone, err)
	}

	// The default covers the full MiniMax poll budget plus the sync providers.
	cfg.GenerateTimeout = cfg.MiniMaxPollInterval*time.Duration(cfg.MiniMaxPollAttempts) + 2*time.Minute
	if secs := getEnvInt("GENERATE_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.GenerateTimeout = time.Duration(secs) * time.Second
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.ConversationWindow < 1 {
		return nil, fmt.Errorf("CONVERSATION_WINDOW must be at least 1, got %d", cfg.ConversationWindow)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
