// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	// Validate Location settings
	if err := validateLocationSettings(&settings.Location); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate StaticTimes settings
	if err := validateStaticTimesSettings(&settings.StaticTimes); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Advanced settings
	if err := validateAdvancedSettings(&settings.Advanced); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Nights settings
	if err := validateNightsSettings(&settings.Nights); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Database settings
	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Frigate settings
	if err := validateFrigateSettings(&settings.Frigate); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Report settings
	if err := validateReportSettings(&settings.Report); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate Email settings
	if err := validateEmailSettings(&settings.Email); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate MQTT settings
	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateLocationSettings validates the observer position.
// Timezone is deliberately not checked here: an unknown name degrades to UTC
// with a warning at resolution time instead of blocking startup.
func validateLocationSettings(settings *LocationSettings) error {
	var errs []string

	// Check if latitude is within valid range
	if settings.Latitude < -90 || settings.Latitude > 90 {
		errs = append(errs, "location latitude must be between -90 and 90")
	}

	// Check if longitude is within valid range
	if settings.Longitude < -180 || settings.Longitude > 180 {
		errs = append(errs, "location longitude must be between -180 and 180")
	}

	if len(errs) > 0 {
		return fmt.Errorf("location settings errors: %v", errs)
	}

	return nil
}

// validateStaticTimesSettings validates the fixed window times
func validateStaticTimesSettings(settings *StaticTimesSettings) error {
	var errs []string

	// Times must parse as HH:MM whenever they are set
	if settings.StartTime != "" {
		if err := validateClockTime(settings.StartTime); err != nil {
			errs = append(errs, fmt.Sprintf("statictimes starttime: %v", err))
		}
	}
	if settings.EndTime != "" {
		if err := validateClockTime(settings.EndTime); err != nil {
			errs = append(errs, fmt.Sprintf("statictimes endtime: %v", err))
		}
	}

	// Enabled static mode requires both times
	if settings.Enabled {
		if settings.StartTime == "" {
			errs = append(errs, "statictimes starttime is required when static times are enabled")
		}
		if settings.EndTime == "" {
			errs = append(errs, "statictimes endtime is required when static times are enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("statictimes settings errors: %v", errs)
	}

	return nil
}

// validateAdvancedSettings validates twilight type and buffer.
// An unrecognized twilight type is a hard error, it is never silently
// replaced with a default depth.
func validateAdvancedSettings(settings *AdvancedSettings) error {
	var errs []string

	switch settings.TwilightType {
	case TwilightCivil, TwilightNautical, TwilightAstronomical:
	default:
		errs = append(errs, fmt.Sprintf("advanced twilighttype must be one of %s, %s or %s, got '%s'",
			TwilightCivil, TwilightNautical, TwilightAstronomical, settings.TwilightType))
	}

	if settings.BufferMinutes < 0 {
		errs = append(errs, "advanced bufferminutes must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("advanced settings errors: %v", errs)
	}

	return nil
}

// validateNightsSettings validates the lookback span
func validateNightsSettings(settings *NightsSettings) error {
	if settings.Count < 1 {
		return fmt.Errorf("nights count must be at least 1, got %d", settings.Count)
	}
	return nil
}

// validateDatabaseSettings validates the Frigate database settings
func validateDatabaseSettings(settings *DatabaseSettings) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "database path must not be empty")
	}

	if settings.BusyTimeoutMs < 0 {
		errs = append(errs, "database busytimeoutms must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("database settings errors: %v", errs)
	}

	return nil
}

// validateFrigateSettings validates the Frigate integration settings
func validateFrigateSettings(settings *FrigateSettings) error {
	var errs []string

	if settings.Label == "" {
		errs = append(errs, "frigate label must not be empty")
	}

	// Host is optional, links are simply omitted without one, but when set
	// it must be an absolute http(s) URL
	if settings.Host != "" {
		u, err := url.Parse(settings.Host)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("frigate host must be an absolute URL, got '%s'", settings.Host))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("frigate host must use http or https, got '%s'", u.Scheme))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("frigate settings errors: %v", errs)
	}

	return nil
}

// validateReportSettings validates the report rendering settings
func validateReportSettings(settings *ReportSettings) error {
	var errs []string

	if settings.OutputDir == "" {
		errs = append(errs, "report outputdir must not be empty")
	}

	if settings.TopEvents < 1 {
		errs = append(errs, "report topevents must be at least 1")
	}

	if settings.HTMLEvents < 1 {
		errs = append(errs, "report htmlevents must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("report settings errors: %v", errs)
	}

	return nil
}

// validateEmailSettings validates the email delivery settings
func validateEmailSettings(settings *EmailSettings) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string

	if settings.SMTP.Host == "" {
		errs = append(errs, "email smtp host is required when email is enabled")
	}

	if settings.SMTP.Port < 1 || settings.SMTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("email smtp port must be between 1 and 65535, got %d", settings.SMTP.Port))
	}

	// An empty username means an unauthenticated relay, but then the sender
	// address cannot be derived from it
	if settings.SMTP.Username == "" && settings.From == "" {
		errs = append(errs, "email from address is required when smtp username is not set")
	}

	if len(settings.To) == 0 {
		errs = append(errs, "email requires at least one recipient when enabled")
	}
	for _, addr := range settings.To {
		if !strings.Contains(addr, "@") {
			errs = append(errs, fmt.Sprintf("email recipient '%s' is not a valid address", addr))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("email settings errors: %v", errs)
	}

	return nil
}

// validateMQTTSettings validates the MQTT publishing settings
func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string

	if settings.Broker == "" {
		errs = append(errs, "mqtt broker is required when mqtt is enabled")
	}

	if settings.Topic == "" {
		errs = append(errs, "mqtt topic is required when mqtt is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("mqtt settings errors: %v", errs)
	}

	return nil
}

// validateClockTime checks that a string is a valid "HH:MM" clock time
func validateClockTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("'%s' is not a valid HH:MM clock time", value)
	}
	return nil
}
