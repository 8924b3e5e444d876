package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

// MemoryStoreURI as MONGODB_URI keeps users in process instead of MongoDB.
const MemoryStoreURI = "memory://"

// DefaultDatabaseName is used when MONGODB_URI names no database.
const DefaultDatabaseName = "devcode"

type Config struct {
	// MONGODB_URI; "memory://" keeps users in process
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	Port          string
	// Prefix of reset links
	FrontendURL string
	// CORS: from ALLOWED_ORIGINS, else the frontend URL
	AllowedOrigins []string
	// Hostname only for strict host check (production only)
	AllowedHost string
	// ENV: production, development, etc.
	Environment string
	// LOG_FORMAT: json (default) or text
	LogFormat    string
	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
}

// LoadEnvFile loads variables from path (".env" when empty) without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return oops.With("path", path).Wrap(err)
	}
	return nil
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	frontendURL := strings.TrimRight(getEnv("DEVCODE_FRONTEND_BASE_URL", getEnv("FRONTEND_URL", "http://localhost:3000")), "/")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(getEnv("HOST", ""))
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	mongoURI := getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/devcode"))
	mongoDatabase := getEnv("MONGODB_DATABASE", "")
	if mongoDatabase == "" && mongoURI != MemoryStoreURI {
		mongoDatabase = databaseFromURI(mongoURI)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil || smtpPort <= 0 {
		smtpPort = 587
	}

	return &Config{
		MongoURI:       mongoURI,
		MongoDatabase:  mongoDatabase,
		JWTSecret:      getEnv("JWT_SECRET_KEY", getEnv("JWT_SECRET", "")),
		AllowedHost:    allowedHost,
		Environment:    env,
		Port:           getEnv("PORT", "5050"),
		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       smtpPort,
		SMTPEmail:      getEnv("DEVCODE_EMAIL", ""),
		SMTPPassword:   getEnv("DEVCODE_EMAIL_PASSWORD", ""),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return oops.Errorf("JWT_SECRET_KEY must be set")
	}
	if c.MongoURI == "" {
		return oops.Errorf("MONGODB_URI must be set")
	}
	if _, err := url.Parse(c.FrontendURL); err != nil {
		return oops.With("frontend_url", c.FrontendURL).Wrapf(err, "invalid DEVCODE_FRONTEND_BASE_URL")
	}
	return nil
}

// UsesMemoryStore reports whether users are kept in process instead of MongoDB.
func (c *Config) UsesMemoryStore() bool {
	return c.MongoURI == MemoryStoreURI
}

// SMTPConfigured reports whether outbound e-mail credentials are present.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPEmail != "" && c.SMTPPassword != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// databaseFromURI extracts the database from a URI of the form
// mongodb://host/db?opts, falling back to DefaultDatabaseName.
func databaseFromURI(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			return dbPart
		}
	}
	return DefaultDatabaseName
}

// hostname strips scheme, path and port from a HOST value such as
// https://api.devcode.example:443/v1.
func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
