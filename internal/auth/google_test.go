package auth

import (
	"encoding/json"
	"testing"

	"github.com/spacesedan/mindnest/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Configured(t *testing.T) {
	status := Status(config.GoogleSettings{
		ClientID:     "id",
		ClientSecret: "secret",
		SiteURL:      "https://mindnest.example/",
	})

	assert.True(t, status.HasClientID)
	assert.True(t, status.HasClientSecret)
	require.NotNil(t, status.SiteURL)
	require.NotNil(t, status.RedirectURI)
	assert.Equal(t, "https://mindnest.example/", *status.SiteURL)
	assert.Equal(t, "https://mindnest.example/api/auth/callback/google", *status.RedirectURI)
}

func TestStatus_Unconfigured(t *testing.T) {
	status := Status(config.GoogleSettings{})

	raw, err := json.Marshal(status)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hasClientId":false,"hasClientSecret":false,"siteUrl":null,"redirectUri":null}`, string(raw))
}

func TestRedirectURI(t *testing.T) {
	assert.Equal(t, "http://localhost:5173/api/auth/callback/google", RedirectURI("http://localhost:5173"))
	assert.Equal(t, "http://localhost:5173/api/auth/callback/google", RedirectURI("http://localhost:5173//"))
}

func TestStatus_SecretWithoutSite(t *testing.T) {
	status := Status(config.GoogleSettings{ClientSecret: "secret"})

	assert.False(t, status.HasClientID)
	assert.True(t, status.HasClientSecret)
	assert.Nil(t, status.SiteURL)
	assert.Nil(t, status.RedirectURI)
}
