package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The mileage earn rates are
// deliberately split per purchase surface: the kiosk and the web shop
// have always paid different rates and unifying them is a product
// decision, not a code cleanup.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	KioskEarnDiv   int           // kiosk mileage earn divisor (earned = amount / div)
	WebEarnPct     int           // web mileage earn percentage
	CameraBaseURL  string        // lost-item camera service base URL (empty disables the gate)
	SweepInterval  time.Duration // period-seat reclaim interval, must be <= 24h
	DBMaxOpen      int           // connection pool: max open connections
	DBMaxIdle      int           // connection pool: max idle connections
	DBConnLifetime time.Duration // connection pool: max connection lifetime
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		KioskEarnDiv:   optInt("KIOSK_EARN_DIVISOR", 10),
		WebEarnPct:     optInt("WEB_EARN_PERCENT", 1),
		CameraBaseURL:  os.Getenv("CAMERA_BASE_URL"),
		SweepInterval:  optDur("SWEEP_INTERVAL", 24*time.Hour),
		DBMaxOpen:      optInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:      optInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime: optDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
	if cfg.SweepInterval > 24*time.Hour {
		log.Fatalf("SWEEP_INTERVAL must be at most 24h, got %s", cfg.SweepInterval)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func optInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func optDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
