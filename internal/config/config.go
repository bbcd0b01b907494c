package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo
)

type Config struct {
	// Telegram
	TelegramToken  string
	TelegramDebug  bool
	BotDisplayName string

	// Form behaviour
	AdminUserIDs []int64
	Years        []int
	TimeZone     string

	// HTTP keep-alive server
	KeepAlive bool
	Port      string

	// Record store
	DataBackend  string
	SQLiteDBPath string

	// Proof images
	ProofBackend    string
	ProofDir        string
	ProofBucket     string
	AWSRegion       string
	DownloadTimeout time.Duration

	// Export
	ExportDir string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:  getEnvBool("TELEGRAM_DEBUG", false),
		BotDisplayName: getEnv("BOT_DISPLAY_NAME", "Contribution Bot"),

		AdminUserIDs: getEnvInt64List("ADMIN_USER_IDS"),
		Years:        getEnvIntList("CONTRIBUTION_YEARS", []int{2025, 2026, 2027, 2028, 2029, 2030}),
		TimeZone:     getEnv("TIMEZONE", "UTC"),

		KeepAlive: getEnvBool("KEEP_ALIVE", false),
		Port:      getEnv("PORT", "8080"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/contributions.db"),

		ProofBackend:    getEnv("PROOF_BACKEND", "local"),
		ProofDir:        getEnv("PROOF_DIR", "./screenshots"),
		ProofBucket:     getEnv("PROOF_BUCKET", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		DownloadTimeout: getEnvDuration("DOWNLOAD_TIMEOUT", 30*time.Second),

		ExportDir: getEnv("EXPORT_DIR", "./exports"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "contributions"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_contributions"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Contributions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks the settings shared by every binary.
func (c *Config) Validate() error {
	var errors []string

	if c.KeepAlive {
		if port, err := strconv.Atoi(c.Port); err != nil {
			errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
		}
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.TimeZone, err))
	}

	if len(c.Years) == 0 {
		errors = append(errors, "at least one contribution year must be configured")
	}
	for _, y := range c.Years {
		if y < 1900 || y > 9999 {
			errors = append(errors, fmt.Sprintf("invalid contribution year %d", y))
		}
	}

	validBackends := []string{"memory", "sqlite"}
	if !oneOf(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	validProofBackends := []string{"local", "gcs", "s3"}
	switch {
	case !oneOf(validProofBackends, c.ProofBackend):
		errors = append(errors, fmt.Sprintf("invalid proof backend '%s': must be one of %v", c.ProofBackend, validProofBackends))
	case c.ProofBackend == "local" && c.ProofDir == "":
		errors = append(errors, "proof directory cannot be empty when using local proof backend")
	case c.ProofBackend != "local" && c.ProofBucket == "":
		errors = append(errors, fmt.Sprintf("PROOF_BUCKET is required when using %s proof backend", c.ProofBackend))
	}

	if c.DownloadTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid download timeout %v: must be at least 1 second", c.DownloadTimeout))
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !oneOf(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateBot adds the checks only the bot binary needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("configuration validation failed:\n- TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// ValidateWorker adds the checks only the mirror worker needs.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errors []string
	if c.DataBackend != "sqlite" {
		errors = append(errors, "mirror worker requires the sqlite data backend")
	}
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the mirror worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "GOOGLE_SHEET_NAME is required for the mirror worker")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the mirror worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// IsAdmin reports whether userID is on the export allow-list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func oneOf(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvInt64List parses a comma separated list; invalid entries are skipped.
func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func getEnvIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
