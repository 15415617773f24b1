package config

import (
	"crypto/rand"
	"encoding/base64"
	"regexp"
	"strings"
)

// Rule declares how one environment variable is validated. Checks run in
// order (presence, MinLength, Pattern, Enum) and stop at the first
// violation for that variable.
type Rule struct {
	Name      string
	Purpose   string
	Required  bool
	MinLength int
	Pattern   *regexp.Regexp
	Enum      []string
	Default   string
	Sensitive bool
	URL       bool
}

var (
	portPattern     = regexp.MustCompile(`^\d{2,5}$`)
	lowercaseWord   = regexp.MustCompile(`^[a-z]+$`)
	logLevelEnum    = []string{"debug", "info", "warn", "error"}
	logFormatEnum   = []string{"text", "json"}
	environmentEnum = []string{"development", "production"}
)

// DefaultPolicy is the full set of variables the backend reads. Order
// matters only for report readability.
func DefaultPolicy() []Rule {
	return []Rule{
		{Name: "APP_ENV", Purpose: "deployment environment", Enum: environmentEnum, Default: "development"},
		{Name: "PORT", Purpose: "HTTP listen port", Pattern: portPattern, Default: "8080"},
		{Name: "DATABASE_URL", Purpose: "Postgres connection string", Required: true, URL: true},
		{Name: "REDIS_URL", Purpose: "Redis connection string", Required: true, URL: true},
		{Name: "SESSION_SECRET", Purpose: "cookie session signing key", Required: true, MinLength: 32, Sensitive: true},
		{Name: "STATE_SIGNING_SECRET", Purpose: "OAuth state token HMAC key", Required: true, MinLength: 32, Sensitive: true},
		{Name: "TOKEN_ENCRYPTION_SECRET", Purpose: "provider token encryption key", Required: true, MinLength: 32, Sensitive: true},
		{Name: "OAUTH_REDIRECT_URL", Purpose: "OAuth callback URL registered with providers", Required: true, URL: true},
		{Name: "GOOGLE_CLIENT_ID", Purpose: "Google OAuth client id", Required: true},
		{Name: "GOOGLE_CLIENT_SECRET", Purpose: "Google OAuth client secret", Required: true, Sensitive: true},
		{Name: "MICROSOFT_CLIENT_ID", Purpose: "Microsoft OAuth client id"},
		{Name: "MICROSOFT_CLIENT_SECRET", Purpose: "Microsoft OAuth client secret", Sensitive: true},
		{Name: "NOTION_CLIENT_ID", Purpose: "Notion OAuth client id"},
		{Name: "NOTION_CLIENT_SECRET", Purpose: "Notion OAuth client secret", Sensitive: true},
		{Name: "LOG_LEVEL", Purpose: "log verbosity", Enum: logLevelEnum, Default: "info"},
		{Name: "LOG_FORMAT", Purpose: "log output format", Enum: logFormatEnum, Default: "text"},
	}
}

// placeholder shapes and dictionary words that show up when a deployment
// ships with example values still in place.
var (
	placeholderFragments = []string{
		"your-", "your_", "-here", "_here", "changeme", "change-me", "change_me",
		"<", ">", "xxx", "todo", "fixme", "placeholder", "insert",
	}
	commonWords = map[string]bool{
		"secret": true, "password": true, "passwort": true, "test": true,
		"example": true, "admin": true, "letmein": true, "qwerty": true,
		"12345678": true, "123456789": true, "1234567890": true,
		"default": true, "development": true, "dev": true,
	}
)

// WeakSecret flags values that look like placeholders or dictionary words
// rather than real key material. It is a best-effort heuristic and
// deliberately replaceable: it can over-flag unusual real secrets and
// under-flag weak ones that dodge its patterns.
var WeakSecret = func(value string) bool {
	lower := strings.ToLower(value)

	if len(value) < 16 {
		return true
	}
	for _, fragment := range placeholderFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	if commonWords[lower] {
		return true
	}
	if allSameByte(value) {
		return true
	}
	// A single plain lowercase word has nowhere near enough entropy.
	if len(value) < 24 && lowercaseWord.MatchString(value) {
		return true
	}
	return false
}

func allSameByte(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

// SuggestSecret returns a freshly generated random value that passes
// every secret rule, for inclusion in weak-value error messages. The rare
// draw that trips the heuristic by chance is redrawn.
func SuggestSecret() string {
	for {
		b := make([]byte, 32)
		_, _ = rand.Read(b)
		if s := base64.RawURLEncoding.EncodeToString(b); !WeakSecret(s) {
			return s
		}
	}
}
