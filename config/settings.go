package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"

	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

type Settings struct {
	Env      string
	HTTPAddr string
	LogLevel string

	ReflectionProvider string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	ReflectionTimeout  time.Duration

	JournalStore string
	AWSRegion    string
	AWSEndpoint  string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	KafkaEnabled bool

	// ProxySecret is shared with the auth proxy that sets X-User-ID.
	ProxySecret string

	Google GoogleSettings
}

type GoogleSettings struct {
	ClientID     string
	ClientSecret string
	SiteURL      string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		return defaultValue
	}
	return d
}

// Get reads settings from the environment. Call LoadEnv first so .env files
// are applied.
func Get() Settings {
	geminiKey := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	openAIKey := os.Getenv("OPENAI_API_KEY")

	provider := strings.ToLower(getEnv("REFLECTION_PROVIDER", ""))
	if provider == "" {
		switch {
		case geminiKey != "":
			provider = ProviderGemini
		case openAIKey != "":
			provider = ProviderOpenAI
		default:
			provider = ProviderNone
		}
	}

	return Settings{
		Env:      AppEnv(),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ReflectionProvider: provider,
		GeminiAPIKey:       geminiKey,
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:       openAIKey,
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ReflectionTimeout:  getDuration("REFLECTION_TIMEOUT", 30*time.Second),

		JournalStore: strings.ToLower(getEnv("JOURNAL_STORE", StoreDynamoDB)),
		AWSRegion:    getEnv("AWS_REGION", "us-west-2"),
		AWSEndpoint:  getEnv("AWS_ENDPOINT", "http://localhost:8000"),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      getBool("VALKEY_TLS", false),

		KafkaEnabled: getBool("KAFKA_ENABLED", false),

		ProxySecret: os.Getenv("AUTH_PROXY_SECRET"),

		Google: GoogleSettings{
			ClientID:     firstEnv("GOOGLE_CLIENT_ID", "AUTH_GOOGLE_ID"),
			ClientSecret: firstEnv("GOOGLE_CLIENT_SECRET", "AUTH_GOOGLE_SECRET"),
			SiteURL:      firstEnv("CONVEX_SITE_URL", "SITE_URL"),
		},
	}
}
