package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	InboxDir  string
	DataDir   string
	OutputDir string
	DBPath    string

	PriceListPath     string
	DiscountRulesPath string

	TaxRate           float64
	DefaultCurrency   string
	QuoteValidityDays int
	SLAHours          int
	CompanyName       string
	ContactEmail      string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string
	GmailRateLimitRPS int

	IMAPHost         string
	IMAPPort         int
	IMAPSecure       bool
	IMAPUser         string
	IMAPPassword     string
	IMAPMarkSeen     bool
	IMAPRateLimitRPS int

	MailListenerProvider    string
	MailListenerLabel       string
	MailListenerIntervalSec int
	MailListenerFetchMax    int
	MailListenerAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InboxDir:  getEnv("INBOX_DIR", filepath.Join(cwd, "inbox")),
		DataDir:   getEnv("DATA_DIR", filepath.Join(cwd, "data")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "mail.db")),

		PriceListPath:     getEnv("PRICE_LIST_PATH", filepath.Join(cwd, "config", "price_list.json")),
		DiscountRulesPath: getEnv("DISCOUNT_RULES_PATH", filepath.Join(cwd, "config", "discount_rules.json")),

		TaxRate:           getEnvFloat("TAX_RATE", 0.095),
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),
		QuoteValidityDays: getEnvInt("QUOTE_VALIDITY_DAYS", 7),
		SLAHours:          getEnvInt("SLA_HOURS", 24),
		CompanyName:       getEnv("COMPANY_NAME", "Acme Corp"),
		ContactEmail:      getEnv("CONTACT_EMAIL", "sales@acme.com"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailRateLimitRPS: getEnvInt("GMAIL_RATE_LIMIT_RPS", 5),

		IMAPHost:         getEnv("IMAP_HOST", ""),
		IMAPPort:         getEnvInt("IMAP_PORT", 993),
		IMAPSecure:       getEnvBool("IMAP_SECURE", true),
		IMAPUser:         getEnv("IMAP_USER", ""),
		IMAPPassword:     getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen:     getEnvBool("IMAP_MARK_SEEN", false),
		IMAPRateLimitRPS: getEnvInt("IMAP_RATE_LIMIT_RPS", 2),

		MailListenerProvider:    getEnv("MAIL_LISTENER_PROVIDER", "gmail"),
		MailListenerLabel:       getEnv("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec: getEnvInt("MAIL_LISTENER_INTERVAL_SEC", 30),
		MailListenerFetchMax:    getEnvInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerAutoExport:  getEnvBool("MAIL_LISTENER_AUTO_EXPORT", true),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects configuration that would silently corrupt every quote.
func (c Config) Validate() error {
	if c.TaxRate < 0 || c.TaxRate > 1 {
		return fmt.Errorf("invalid config: TAX_RATE must be within [0,1], got %g", c.TaxRate)
	}
	if c.QuoteValidityDays <= 0 {
		return fmt.Errorf("invalid config: QUOTE_VALIDITY_DAYS must be positive, got %d", c.QuoteValidityDays)
	}
	if c.SLAHours <= 0 {
		return fmt.Errorf("invalid config: SLA_HOURS must be positive, got %d", c.SLAHours)
	}
	if strings.TrimSpace(c.DefaultCurrency) == "" {
		return fmt.Errorf("invalid config: DEFAULT_CURRENCY must not be empty")
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
