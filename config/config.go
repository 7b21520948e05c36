package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Currency is the only currency the payment gateway is asked to charge in.
const Currency = "TND"

// Config is built once at startup and handed to every component by pointer.
// Nothing outside this package reads the process environment.
type Config struct {
	Env     string
	Port    string
	BaseURL string

	DatabaseURL string
	JWTSecret   string

	// AdminPasswordHash is a bcrypt hash. AdminPassword is only used when no
	// hash is configured and is hashed once at startup.
	AdminPasswordHash string
	AdminPassword     string

	Gateway Gateway
	Email   Email

	SlackWebhookURL string

	PublicDir string
	QRDir     string
	UploadDir string

	// DocumentsDir holds the course material offered to members.
	DocumentsDir string

	Features Features
}

// Gateway holds the payment gateway credentials.
type Gateway struct {
	APIURL        string
	MerchantID    string
	APIKey        string
	WebhookSecret string
}

// Email holds the transactional email settings. At most one provider is used:
// SendGrid when an API key is present, SMTP when a host is present.
type Email struct {
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	FromEmail      string
	FromName       string
	AdminEmail     string
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return FromEnv(os.Getenv)
}

// loadDotEnv walks up from the working directory and loads the first .env
// file it finds. Variables already set in the environment win.
func loadDotEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return nil
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	var smtpPort string

	vars := []struct {
		env      string
		dst      *string
		def      string
		required bool
	}{
		{"APP_ENV", &cfg.Env, "development", false},
		{"PORT", &cfg.Port, "3000", false},
		{"BASE_URL", &cfg.BaseURL, "", true},
		{"DATABASE_URL", &cfg.DatabaseURL, "", true},
		{"JWT_SECRET", &cfg.JWTSecret, "", true},
		{"ADMIN_PASSWORD_HASH", &cfg.AdminPasswordHash, "", false},
		{"ADMIN_PASSWORD", &cfg.AdminPassword, "", false},

		{"GPG_API_URL", &cfg.Gateway.APIURL, "", false},
		{"GPG_MERCHANT_ID", &cfg.Gateway.MerchantID, "", false},
		{"GPG_API_KEY", &cfg.Gateway.APIKey, "", false},
		{"GPG_WEBHOOK_SECRET", &cfg.Gateway.WebhookSecret, "", true},

		{"SENDGRID_API_KEY", &cfg.Email.SendGridAPIKey, "", false},
		{"SMTP_HOST", &cfg.Email.SMTPHost, "", false},
		{"SMTP_PORT", &smtpPort, "587", false},
		{"SMTP_USER", &cfg.Email.SMTPUser, "", false},
		{"SMTP_PASSWORD", &cfg.Email.SMTPPassword, "", false},
		{"FROM_EMAIL", &cfg.Email.FromEmail, "", false},
		{"FROM_NAME", &cfg.Email.FromName, "Bardo Academic Centre for Education", false},
		{"ADMIN_EMAIL", &cfg.Email.AdminEmail, "", false},

		{"SLACK_WEBHOOK_URL", &cfg.SlackWebhookURL, "", false},

		{"PUBLIC_DIR", &cfg.PublicDir, "public", false},
		{"QR_DIR", &cfg.QRDir, filepath.Join("public", "qrcodes"), false},
		{"UPLOAD_DIR", &cfg.UploadDir, filepath.Join("uploads", "payments"), false},
		{"DOCUMENTS_DIR", &cfg.DocumentsDir, "documents", false},
	}

	var missing []string
	for _, v := range vars {
		value := strings.TrimSpace(getenv(v.env))
		if value == "" {
			if v.required {
				missing = append(missing, v.env)
				continue
			}
			value = v.def
		}
		*v.dst = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(smtpPort)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid SMTP_PORT %q", smtpPort)
	}
	cfg.Email.SMTPPort = port
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Features = loadFeatures(getenv)

	return cfg, nil
}
