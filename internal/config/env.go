package config

import (
	"errors"
	"strings"
)

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// Origins splits ALLOWED_ORIGINS on commas. An empty list means no CORS headers.
func (c Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// AcceptURL is the link volunteers follow to claim a donation.
func (c Config) AcceptURL(donationID string) string {
	return strings.TrimRight(c.FrontendURL, "/") + "/volunteer/accept/" + donationID
}

func (c Config) TwilioEnabled() bool {
	return c.TwilioSID != "" && c.TwilioAuth != "" && c.TwilioFrom != ""
}

func (c Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.JWTTTL <= 0 || c.OTPTTL <= 0 {
		return errors.New("JWT_TTL and OTP_TTL must be positive")
	}
	if c.VolunteerRadiusMeters <= 0 {
		return errors.New("VOLUNTEER_RADIUS_METERS must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.New("LOG_FORMAT must be text or json")
	}
	return nil
}
