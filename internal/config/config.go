// Package config reads server settings from the environment.
//
// An optional .env file is loaded first. Variables already set in the real
// environment win over the file, so deployments can override anything.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/nutrition-tracker/internal/fatsecret"
)

// Session store backends accepted in SESSION_STORE.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level

	FatSecret fatsecret.Config

	SessionStore string
	RedisURL     string

	// CookieSecure sets the Secure flag on the session cookie. Turn it on
	// whenever the server sits behind HTTPS.
	CookieSecure bool
}

// Load reads envFiles (default ".env") into the process environment and
// builds a Config from it. A missing env file is not an error; a malformed
// value is. Load does not check required keys, see Validate.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	p := parser{}
	cfg := Config{
		Port:     p.lookupInt("PORT", 8080),
		DBPath:   p.lookupString("DB_PATH", "data/nutrition.db"),
		LogLevel: p.lookupLevel("LOG_LEVEL", slog.LevelInfo),
		FatSecret: fatsecret.Config{
			ConsumerKey:    p.lookupString("FATSECRET_CONSUMER_KEY", ""),
			ConsumerSecret: p.lookupString("FATSECRET_CONSUMER_SECRET", ""),
			BaseURL:        p.lookupString("FATSECRET_BASE_URL", fatsecret.DefaultBaseURL),
			Timeout:        p.lookupDuration("FATSECRET_TIMEOUT", 10*time.Second),
			RateLimit:      p.lookupFloat("FATSECRET_RATE_LIMIT", 5),
		},
		SessionStore: strings.ToLower(p.lookupString("SESSION_STORE", SessionStoreMemory)),
		RedisURL:     p.lookupString("REDIS_URL", "redis://localhost:6379/0"),
		CookieSecure: p.lookupBool("COOKIE_SECURE", false),
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("config: DB_PATH must not be empty"))
	}
	if c.FatSecret.ConsumerKey == "" {
		errs = append(errs, errors.New("config: FATSECRET_CONSUMER_KEY is required"))
	}
	if c.FatSecret.ConsumerSecret == "" {
		errs = append(errs, errors.New("config: FATSECRET_CONSUMER_SECRET is required"))
	}
	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("config: REDIS_URL is required when SESSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: SESSION_STORE %q must be %q or %q",
			c.SessionStore, SessionStoreMemory, SessionStoreRedis))
	}

	return errors.Join(errs...)
}

// parser collects conversion errors so Load can report them together.
type parser struct {
	errs []error
}

func (p *parser) lookupString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) lookupInt(key string, def int) int {
	v := p.lookupString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s=%q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) lookupFloat(key string, def float64) float64 {
	v := p.lookupString(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s=%q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) lookupBool(key string, def bool) bool {
	v := p.lookupString(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s=%q is not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) lookupDuration(key string, def time.Duration) time.Duration {
	v := p.lookupString(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s=%q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) lookupLevel(key string, def slog.Level) slog.Level {
	v := p.lookupString(key, "")
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s=%q is not a log level", key, v))
		return def
	}
	return lvl
}
