package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"helloworld/utils"
)

const (
	// EnvProduction is the APP_ENV value that enables the production posture.
	EnvProduction = "production"
	// EnvDevelopment is the APP_ENV value for local development.
	EnvDevelopment = "development"

	// DefaultPort is used when neither PORT nor BACKEND_PORT yields an integer.
	DefaultPort = 3000

	// RenderDomain is the hosting provider suffix used to build URLs from short host names.
	RenderDomain = "onrender.com"
)

// Config holds the backend runtime configuration. It is built once at startup
// and never mutated afterwards.
type Config struct {
	Environment string
	IsProd      bool
	IsDev       bool
	Port        int
	// FrontendURL is the raw FRONTEND_URL value; CORS uses it as an exact-match origin.
	FrontendURL string
	// FrontendOrigin is FRONTEND_URL, else a Render URL built from FRONTEND_HOST, else empty.
	FrontendOrigin string
	EnableMetrics  bool
	LogRequests    bool
}

// Lookup reports the value of an environment variable and whether it is set.
type Lookup func(key string) (string, bool)

// LoadConfig loads configuration from the process environment
func LoadConfig() *Config {
	return Load(os.LookupEnv, utils.WarnLogger)
}

// Load resolves the configuration from lookup. Missing production settings are
// reported on warn and never abort startup.
func Load(lookup Lookup, warn *log.Logger) *Config {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	env := get("APP_ENV")
	if env == "" {
		env = EnvProduction
	}

	frontendURL := get("FRONTEND_URL")
	cfg := &Config{
		Environment:    env,
		IsProd:         env == EnvProduction,
		IsDev:          env == EnvDevelopment,
		Port:           resolvePort(lookup),
		FrontendURL:    frontendURL,
		FrontendOrigin: ResolveURL(frontendURL, get("FRONTEND_HOST")),
		EnableMetrics:  parseBool(get("ENABLE_METRICS"), false),
		LogRequests:    parseBool(get("LOG_REQUESTS"), true),
	}

	if cfg.IsProd && cfg.FrontendOrigin == "" && warn != nil {
		warn.Println("⚠️  [WARNING] FRONTEND_URL and FRONTEND_HOST are not set in production")
		warn.Println("⚠️  [WARNING] CORS will only allow *.onrender.com and *.vercel.app origins")
	}

	return cfg
}

// Addr returns the listen address for the given host.
func (c *Config) Addr(host string) string {
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// ResolveURL applies the URL priority chain: an explicit URL wins verbatim,
// otherwise a short host name becomes a Render URL, otherwise the result is empty.
func ResolveURL(explicit, host string) string {
	if explicit != "" {
		return explicit
	}
	if host != "" {
		return RenderURL(host)
	}
	return ""
}

// RenderURL builds the public https URL of a Render service from its short name.
func RenderURL(host string) string {
	return "https://" + host + "." + RenderDomain
}

func resolvePort(lookup Lookup) int {
	for _, key := range []string{"PORT", "BACKEND_PORT"} {
		if raw, ok := lookup(key); ok {
			if port, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				return port
			}
		}
	}
	return DefaultPort
}

func parseBool(value string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
