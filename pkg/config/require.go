package config

import (
	"fmt"
	"log"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate checks the combinations Load cannot express on its own.
func (c Config) Validate() error {
	switch c.IdentityMode {
	case "fixed":
		if c.FixedUserID == 0 {
			return fmt.Errorf("FIXED_USER_ID must be positive")
		}
	case "jwt":
		if len(c.JWTAccessSecret) == 0 {
			return fmt.Errorf("IDENTITY_MODE=jwt requires JWT_SECRET")
		}
	case "remote":
		if c.AuthHTTPURL == "" {
			return fmt.Errorf("IDENTITY_MODE=remote requires AUTH_URL")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_MODE %q", c.IdentityMode)
	}

	switch c.CartLinePolicy {
	case "allow", "reject", "increment":
	default:
		return fmt.Errorf("unknown CART_LINE_POLICY %q", c.CartLinePolicy)
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}
