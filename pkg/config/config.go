package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string
	LogLevel    string

	IdentityMode   string
	FixedUserID    uint
	FixedUserAdmin bool

	JWTAccessSecret []byte
	AuthHTTPURL     string

	CartLinePolicy string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RateLimitRPS   int
	RateLimitBurst int

	CSRFEnabled      bool
	CSRFCookieSecure bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "tgkadsf"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		IdentityMode:   strings.ToLower(EnvDefault("IDENTITY_MODE", "fixed")),
		FixedUserID:    uint(EnvIntDefault("FIXED_USER_ID", 1)),
		FixedUserAdmin: EnvBoolDefault("FIXED_USER_ADMIN", true),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		AuthHTTPURL:     os.Getenv("AUTH_URL"),

		CartLinePolicy: strings.ToLower(EnvDefault("CART_LINE_POLICY", "allow")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "channels"),

		RateLimitRPS:   EnvIntDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst: EnvIntDefault("RATE_LIMIT_BURST", 20),

		CSRFEnabled:      EnvBoolDefault("CSRF_ENABLED", false),
		CSRFCookieSecure: EnvBoolDefault("CSRF_COOKIE_SECURE", false),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
