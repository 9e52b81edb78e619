package config

import (
	"net"
	"os"
	"strconv"
	"strings"
)

// BackendConfig holds the location of the StudyMate backend and its route layout.
type BackendConfig struct {
	BaseURL         string
	UploadPath      string
	ListPath        string
	ContentPath     string
	SummarizePath   string
	ExplainPath     string
	QuestionsPath   string
	AskPath         string
	SpeechPath      string
	DiscussionsPath string
}

// IdentityConfig holds OAuth2/OIDC settings for the identity provider.
// Mode selects the sign-in flow: "code" (interactive authorization code),
// "refresh" (preconfigured refresh token) or "static" (fixed bearer token).
type IdentityConfig struct {
	Mode         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
	RedirectURL  string
	Scopes       []string
	RefreshToken string
	StaticToken  string
}

// DatabaseConfig holds PostgreSQL settings for the optional activity journal.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a journal database has been configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for the audio clip store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether MinIO should back the clip store instead of memory.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	BindHost       string
	Port           string
	Timezone       string
	ClipURLTTLSec  int
	SessionIdleMin int
	CookieSecure   bool
	MetricsEnabled bool
	Backend        BackendConfig
	Identity       IdentityConfig
	Database       DatabaseConfig
	MinIO          MinIOConfig
}

// ListenAddr is the address the companion server binds to. The host defaults to loopback.
func (c *AppConfig) ListenAddr() string {
	return net.JoinHostPort(c.BindHost, c.Port)
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		BindHost:       getEnv("BIND_HOST", "127.0.0.1"),
		Port:           getEnv("PORT", "8080"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		ClipURLTTLSec:  getEnvInt("CLIP_URL_TTL_SEC", 900),
		SessionIdleMin: getEnvInt("SESSION_IDLE_TIMEOUT_MIN", 60),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		Backend: BackendConfig{
			BaseURL:         getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
			UploadPath:      getEnv("BACKEND_UPLOAD_PATH", "/documents/upload"),
			ListPath:        getEnv("BACKEND_LIST_PATH", "/documents/list"),
			ContentPath:     getEnv("BACKEND_CONTENT_PATH", "/documents/{id}/content"),
			SummarizePath:   getEnv("BACKEND_SUMMARIZE_PATH", "/ai/summarize"),
			ExplainPath:     getEnv("BACKEND_EXPLAIN_PATH", "/ai/explain"),
			QuestionsPath:   getEnv("BACKEND_QUESTIONS_PATH", "/ai/questions"),
			AskPath:         getEnv("BACKEND_ASK_PATH", "/ai/ask-document"),
			SpeechPath:      getEnv("BACKEND_SPEECH_PATH", "/ai/text-to-speech"),
			DiscussionsPath: getEnv("BACKEND_DISCUSSIONS_PATH", "/discussions/{id}"),
		},
		Identity: IdentityConfig{
			Mode:         getEnv("IDENTITY_MODE", "code"),
			ClientID:     getEnv("IDENTITY_CLIENT_ID", ""),
			ClientSecret: getEnv("IDENTITY_CLIENT_SECRET", ""),
			AuthURL:      getEnv("IDENTITY_AUTH_URL", "https://accounts.google.com/o/oauth2/auth"),
			TokenURL:     getEnv("IDENTITY_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			RevokeURL:    getEnv("IDENTITY_REVOKE_URL", ""),
			RedirectURL:  getEnv("IDENTITY_REDIRECT_URL", "http://localhost:8080/auth/callback"),
			Scopes:       getEnvList("IDENTITY_SCOPES", []string{"openid", "email", "profile"}),
			RefreshToken: getEnv("IDENTITY_REFRESH_TOKEN", ""),
			StaticToken:  getEnv("IDENTITY_STATIC_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "studymate-audio"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
