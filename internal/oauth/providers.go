package oauth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/platform/config"
)

// notionEndpoint is not shipped with x/oauth2.
var notionEndpoint = oauth2.Endpoint{
	AuthURL:  "https://api.notion.com/v1/oauth/authorize",
	TokenURL: "https://api.notion.com/v1/oauth/token",
}

var sourceScopes = map[domain.SourceType][]string{
	domain.SourceGmail:   {"https://www.googleapis.com/auth/gmail.readonly"},
	domain.SourceGDrive:  {"https://www.googleapis.com/auth/drive.readonly"},
	domain.SourceOutlook: {"offline_access", "Mail.Read"},
	domain.SourceNotion:  nil, // Notion grants are capability-scoped per workspace
}

// providerRegistry builds the per-source oauth2.Config set once at boot.
func providerRegistry(cfg *config.Config) map[domain.SourceType]*oauth2.Config {
	registry := make(map[domain.SourceType]*oauth2.Config)

	if cfg.GoogleClientID != "" {
		for _, source := range []domain.SourceType{domain.SourceGmail, domain.SourceGDrive} {
			registry[source] = &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  cfg.OAuthRedirectURL,
				Scopes:       sourceScopes[source],
			}
		}
	}
	if cfg.MicrosoftClientID != "" {
		registry[domain.SourceOutlook] = &oauth2.Config{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
			Endpoint:     endpoints.AzureAD("common"),
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       sourceScopes[domain.SourceOutlook],
		}
	}
	if cfg.NotionClientID != "" {
		registry[domain.SourceNotion] = &oauth2.Config{
			ClientID:     cfg.NotionClientID,
			ClientSecret: cfg.NotionClientSecret,
			Endpoint:     notionEndpoint,
			RedirectURL:  cfg.OAuthRedirectURL,
		}
	}

	return registry
}
