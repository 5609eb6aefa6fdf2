// env.go - Environment variable configuration and validation for fox-report
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Observer location
		{"location.latitude", "FOX_REPORT_LATITUDE", validateEnvLatitude},
		{"location.longitude", "FOX_REPORT_LONGITUDE", validateEnvLongitude},
		{"location.timezone", "FOX_REPORT_TIMEZONE", validateEnvTimezone},

		// Window resolution
		{"advanced.twilighttype", "FOX_REPORT_TWILIGHT_TYPE", validateEnvTwilightType},
		{"advanced.bufferminutes", "FOX_REPORT_BUFFER_MINUTES", validateEnvNonNegativeInt},
		{"nights.count", "FOX_REPORT_NIGHTS", validateEnvPositiveInt},

		// Frigate database and web UI
		{"database.path", "FOX_REPORT_DATABASE_PATH", nil},
		{"frigate.host", "FOX_REPORT_FRIGATE_HOST", nil},
		{"frigate.label", "FOX_REPORT_LABEL", nil},

		// Delivery credentials, kept out of the config file
		{"email.smtp.username", "FOX_REPORT_EMAIL_SMTP_USERNAME", nil},
		{"email.smtp.password", "FOX_REPORT_EMAIL_SMTP_PASSWORD", nil},
		{"mqtt.username", "FOX_REPORT_MQTT_USERNAME", nil},
		{"mqtt.password", "FOX_REPORT_MQTT_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		// Bind the environment variable to the config key
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvLatitude(value string) error {
	lat, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", lat)
	}
	return nil
}

func validateEnvLongitude(value string) error {
	lng, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", lng)
	}
	return nil
}

func validateEnvTimezone(value string) error {
	if _, err := time.LoadLocation(value); err != nil {
		return fmt.Errorf("unknown IANA timezone '%s': %w", value, err)
	}
	return nil
}

func validateEnvTwilightType(value string) error {
	switch value {
	case TwilightCivil, TwilightNautical, TwilightAstronomical:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s, %s", TwilightCivil, TwilightNautical, TwilightAstronomical)
}

func validateEnvNonNegativeInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("must be non-negative, got %d", n)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	// Set up key replacer for nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables with validation
	// Return any errors to the caller for centralized handling
	return bindEnvVars()
}
