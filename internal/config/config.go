package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DatabaseURL   string // MySQL DSN; built from the DB_* parts when DATABASE_URL is unset
	JWTSecret     string // secret used to sign JWTs
	AccessTTLMin  int    // access token time-to-live in minutes
	BcryptCost    int    // bcrypt cost for password hashing
	CookieSecure  bool   // mark the session cookie Secure (HTTPS only)
	AutoMigrate   bool   // create tables at startup
	Seed          bool   // insert demo reference data at startup when tables are empty
	AdminUsername string // optional admin account created at startup
	AdminPassword string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8000"),
		DatabaseURL:   databaseURL(),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		AutoMigrate:   envBool("DB_AUTO_MIGRATE", true),
		Seed:          envBool("DB_SEED", true),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// databaseURL prefers the single DATABASE_URL connection string and falls
// back to the discrete DB_* variables.
func databaseURL() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	auth := must("DB_USER")
	if pass := os.Getenv("DB_PASS"); pass != "" {
		auth = fmt.Sprintf("%s:%s", auth, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s", auth, must("DB_HOST"), envStr("DB_PORT", "3306"), must("DB_NAME"))
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
