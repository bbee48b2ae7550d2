package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values. It is built once at startup
// and passed explicitly to the components that need it.
type Config struct {
	HTTPPort         string
	DatabaseDSN      string
	Secret           string
	JWTExpireMinutes int
	AllowedOrigins   []string
	SeedDemoData     bool

	ClinicName    string
	ClinicAddress string
	ClinicPhone   string
	ClinicHours   string
	ClinicAbout   string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := envOr("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	expire := 60
	if raw := os.Getenv("JWT_EXPIRE_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			expire = n
		} else {
			log.Printf("invalid JWT_EXPIRE_MINUTES value %q, defaulting to 60", raw)
		}
	}

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		HTTPPort:         port,
		DatabaseDSN:      envOr("DATABASE_DSN", "clinic.db"),
		Secret:           envOr("JWT_SECRET", "dev_secret_key"),
		JWTExpireMinutes: expire,
		AllowedOrigins:   origins,
		SeedDemoData:     envOr("SEED_DEMO_DATA", "false") == "true",

		ClinicName:    envOr("CLINIC_NAME", "VetCore Pet Clinic"),
		ClinicAddress: envOr("CLINIC_ADDRESS", "123 Main Street, Cityville"),
		ClinicPhone:   envOr("CLINIC_PHONE", "+91 98765 43210"),
		ClinicHours:   envOr("CLINIC_HOURS", "Mon-Sat 9 AM - 7 PM"),
		ClinicAbout: envOr("CLINIC_ABOUT",
			"Trusted veterinary care for your beloved pets. We offer consultations, "+
				"vaccinations, surgeries, grooming, and 24/7 emergency services."),
	}
}
