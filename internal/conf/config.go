// config.go: This file contains the configuration for the fox-report application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// LocationSettings holds the observer position used for twilight computation.
type LocationSettings struct {
	Latitude  float64 // observer latitude in decimal degrees
	Longitude float64 // observer longitude in decimal degrees
	Elevation float64 // observer elevation in meters above sea level
	Timezone  string  // IANA timezone name, e.g. "Europe/Helsinki"; empty falls back to UTC
}

// StaticTimesSettings holds fixed clock times for the night window. When
// Enabled the window is built from these times instead of twilight
// computation. When disabled but both times are set they still serve as the
// fallback for dates where twilight cannot be computed.
type StaticTimesSettings struct {
	Enabled   bool   // true to use fixed clock times instead of twilight
	StartTime string // window start as "HH:MM" local time
	EndTime   string // window end as "HH:MM" local time, rolls past midnight when <= start
}

// AdvancedSettings tunes night window resolution.
type AdvancedSettings struct {
	TwilightType  string // twilight depth: civil, nautical or astronomical
	BufferMinutes int    // symmetric padding in minutes applied to both window edges
}

// NightsSettings controls the default lookback span of a report.
type NightsSettings struct {
	Count int // number of nights a report covers by default
}

// DatabaseSettings points at the Frigate SQLite database.
type DatabaseSettings struct {
	Path          string // path to frigate.db
	BusyTimeoutMs int    // SQLite busy_timeout pragma in milliseconds
}

// FrigateSettings configures the Frigate NVR integration.
type FrigateSettings struct {
	Host        string   // base URL of the Frigate web UI, e.g. "http://frigate.local:5000"
	Label       string   // detection label to report on
	Cameras     []string // restrict reports to these cameras, empty for all
	Timeline    bool     // attach timeline entries when the timeline table exists
	VerifyClips bool     // HEAD-check clip URLs before linking them
}

// ReportSettings controls report rendering.
type ReportSettings struct {
	OutputDir  string // directory for JSON report artifacts
	TopEvents  int    // events listed per camera in Markdown output
	HTMLEvents int    // events rendered per camera in HTML output
}

// SMTPSettings holds the SMTP submission endpoint for email delivery.
type SMTPSettings struct {
	Host     string // SMTP server hostname
	Port     int    // SMTP submission port
	Username string // SMTP username
	Password string // SMTP password, prefer FOX_REPORT_EMAIL_SMTP_PASSWORD over the config file
}

// EmailSettings configures report delivery over SMTP.
type EmailSettings struct {
	Enabled bool         // true to enable email delivery
	SMTP    SMTPSettings // SMTP submission endpoint
	From    string       // sender address, defaults to the SMTP username
	To      []string     // recipient addresses
	HTML    bool         // send the HTML report body instead of plain text
}

// MQTTSettings configures summary publishing after report generation.
type MQTTSettings struct {
	Enabled  bool   // true to publish a report summary over MQTT
	Broker   string // MQTT broker URL, e.g. "tcp://localhost:1883"
	Topic    string // topic the summary is published to
	ClientID string // MQTT client identifier
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // publish the summary as a retained message
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly (as a string: "Sunday", "Monday", etc.)
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// Settings contains all runtime configuration for fox-report.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string // node name used in reports and MQTT payloads
	}

	Location    LocationSettings    // observer position for twilight computation
	StaticTimes StaticTimesSettings // fixed window times
	Advanced    AdvancedSettings    // twilight depth and window padding
	Nights      NightsSettings      // default lookback span
	Database    DatabaseSettings    // Frigate SQLite database
	Frigate     FrigateSettings     // Frigate NVR integration
	Report      ReportSettings      // report rendering
	Email       EmailSettings       // report delivery over SMTP
	MQTT        MQTTSettings        // summary publishing
	Log         LogConfig           // application log file
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and makes it the current one.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	// Create a new settings struct
	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	// Save settings instance
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Get OS specific config paths
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	// Assign config paths to Viper
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Bind FOX_REPORT_ environment variables so they override file values
	if err := configureEnvironmentVariables(); err != nil {
		// Invalid env values are reported but never block startup, the
		// merged result is validated after unmarshaling anyway
		log.Printf("Warning: %v", err)
	}

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths() // Again, adjusted for error handling
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// Create directories for config file
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write default config file
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings saves the current settings to the configuration file.
// It uses SaveYAMLConfig to handle the atomic write process.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	// Create a copy of the settings so the write happens outside the live instance
	settingsCopy := *settingsInstance

	// Find the path of the current config file
	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	// Save the settings to the config file
	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	// Marshal the settings struct to YAML
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write the YAML data to a temporary file
	// This is done to ensure atomic write operation
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	// Ensure the temporary file is removed in case of any failure
	defer os.Remove(tempFileName)

	// Write the YAML data to the temporary file
	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	// Close the temporary file after writing
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	// Try to rename the temporary file to replace the original config file
	// This is typically an atomic operation on most filesystems
	if err := os.Rename(tempFileName, configPath); err != nil {
		// If rename fails (e.g., cross-device link), fall back to copy & delete
		// This might happen when the temp directory is on a different filesystem
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	// If we've reached this point, the operation was successful
	return nil
}
