// Package config loads runtime settings from defaults, optional .env files
// and the process environment, in that order.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Addr      string
	Env       string
	LogLevel  string
	ClientURL string
	// CORSOrigins is a comma separated allow list; empty allows every origin.
	CORSOrigins string
	JWTSecret   string

	Database DatabaseConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Sheets   SheetsConfig
	Admin    AdminSeed
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// Enabled reports whether real email delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type SheetsConfig struct {
	Enabled         bool
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
}

// AdminSeed describes an admin account created at startup when missing.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

func (a AdminSeed) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":5000"
	c.Env = "development"
	c.LogLevel = "info"
	c.ClientURL = "http://localhost:5173"
	c.JWTSecret = defaultJWTSecret
	c.Database = DatabaseConfig{Driver: "sqlite", DSN: "data/employees.db"}
	c.SMTP = SMTPConfig{Port: 587, FromName: "Employee Management"}
	c.Sheets = SheetsConfig{SheetName: "Employees"}
	c.Admin = AdminSeed{Name: "Administrator"}
}

// Load builds a Config from defaults, the given .env files (missing files are
// skipped) and the environment. With no files, ".env" is tried.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	setString(&c.Addr, "ADDR")
	setString(&c.Env, "ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.ClientURL, "CLIENT_URL")
	setString(&c.CORSOrigins, "CORS_ORIGINS")
	setString(&c.JWTSecret, "JWT_SECRET")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Username, "EMAIL_USERNAME")
	setString(&c.SMTP.Password, "EMAIL_PASSWORD")
	setString(&c.SMTP.FromName, "EMAIL_FROM_NAME")
	setString(&c.SMTP.FromAddress, "EMAIL_FROM_ADDRESS")
	if err := setInt(&c.SMTP.Port, "SMTP_PORT"); err != nil {
		return err
	}

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if err := setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	if v := os.Getenv("SHEETS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("SHEETS_ENABLED: " + err.Error())
		}
		c.Sheets.Enabled = enabled
	}
	setString(&c.Sheets.CredentialsPath, "SHEETS_CREDENTIALS")
	setString(&c.Sheets.SpreadsheetID, "SHEETS_SPREADSHEET_ID")
	setString(&c.Sheets.SheetName, "SHEETS_SHEET_NAME")

	setString(&c.Admin.Name, "ADMIN_NAME")
	setString(&c.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	return nil
}

// Validate rejects combinations that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.New("DB_DRIVER must be sqlite or postgres")
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	// the log mailer would write reset links to the log
	if c.IsProduction() && !c.SMTP.Enabled() {
		return errors.New("SMTP_HOST must be set in production")
	}
	if c.Sheets.Enabled && (c.Sheets.CredentialsPath == "" || c.Sheets.SpreadsheetID == "") {
		return errors.New("SHEETS_CREDENTIALS and SHEETS_SPREADSHEET_ID are required when SHEETS_ENABLED")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New(key + ": " + err.Error())
	}
	*dst = n
	return nil
}
