package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGet_Defaults(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "REFLECTION_PROVIDER", "JOURNAL_STORE", "APP_ENV"} {
		t.Setenv(k, "")
	}

	s := Get()
	assert.Equal(t, "dev", s.Env)
	assert.Equal(t, ProviderNone, s.ReflectionProvider)
	assert.Equal(t, "gemini-1.5-flash", s.GeminiModel)
	assert.Equal(t, 30*time.Second, s.ReflectionTimeout)
	assert.False(t, s.KafkaEnabled)
}

func TestGet_ProviderInference(t *testing.T) {
	t.Setenv("REFLECTION_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	s := Get()
	assert.Equal(t, ProviderGemini, s.ReflectionProvider)
	assert.Equal(t, "g-key", s.GeminiAPIKey)

	t.Setenv("REFLECTION_PROVIDER", "OpenAI")
	assert.Equal(t, ProviderOpenAI, Get().ReflectionProvider)
}

func TestGet_GoogleFallbackKeys(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("AUTH_GOOGLE_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("AUTH_GOOGLE_SECRET", "")
	t.Setenv("CONVEX_SITE_URL", "")
	t.Setenv("SITE_URL", "https://mindnest.example")

	g := Get().Google
	assert.Equal(t, "client-id", g.ClientID)
	assert.Empty(t, g.ClientSecret)
	assert.Equal(t, "https://mindnest.example", g.SiteURL)
}

func TestGetDuration_Invalid(t *testing.T) {
	t.Setenv("REFLECTION_TIMEOUT", "soon")
	assert.Equal(t, 30*time.Second, Get().ReflectionTimeout)
}

func TestGet_ProxySecret(t *testing.T) {
	t.Setenv("AUTH_PROXY_SECRET", "")
	assert.Empty(t, Get().ProxySecret)

	t.Setenv("AUTH_PROXY_SECRET", "s3cret")
	assert.Equal(t, "s3cret", Get().ProxySecret)
}
