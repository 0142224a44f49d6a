package auth

import (
	"strings"

	"github.com/spacesedan/mindnest/config"
)

const GoogleCallbackPath = "/api/auth/callback/google"

// GoogleStatus reports whether Google sign-in is configured. SiteURL and
// RedirectURI are null when no site URL is set.
type GoogleStatus struct {
	HasClientID     bool    `json:"hasClientId"`
	HasClientSecret bool    `json:"hasClientSecret"`
	SiteURL         *string `json:"siteUrl"`
	RedirectURI     *string `json:"redirectUri"`
}

// RedirectURI is the callback Google must be configured with for siteURL.
func RedirectURI(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + GoogleCallbackPath
}

func Status(settings config.GoogleSettings) GoogleStatus {
	status := GoogleStatus{
		HasClientID:     settings.ClientID != "",
		HasClientSecret: settings.ClientSecret != "",
	}
	if settings.SiteURL != "" {
		site := settings.SiteURL
		redirect := RedirectURI(site)
		status.SiteURL = &site
		status.RedirectURI = &redirect
	}
	return status
}
