package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Settings is the runtime configuration of the service.
type Settings struct {
	Server       ServerSettings       `koanf:"server"`
	Regions      RegionSettings       `koanf:"regions"`
	Search       SearchSettings       `koanf:"search"`
	Encyclopedia EncyclopediaSettings `koanf:"encyclopedia"`
	Calendar     CalendarSettings     `koanf:"calendar"`
	Logging      LoggingSettings      `koanf:"logging"`
}

// ServerSettings configures the HTTP listener and its middleware.
type ServerSettings struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	StaticDir         string        `koanf:"static_dir"`
	CORSOrigins       []string      `koanf:"cors_origins" validate:"min=1,dive,required"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// Addr returns the listen address in host:port form.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s%s%d", s.Host, AddrSeparator, s.Port)
}

// RegionSettings selects the region catalog sources.
type RegionSettings struct {
	// File is an optional YAML catalog that takes precedence over the embedded one.
	File string `koanf:"file"`
}

// SearchSettings configures the video search proxy.
type SearchSettings struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// EncyclopediaSettings configures the encyclopedia client used for enrichment.
type EncyclopediaSettings struct {
	RESTBase      string        `koanf:"rest_base" validate:"required,url"`
	ActionBase    string        `koanf:"action_base" validate:"required,url"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gt=0"`
	Burst         int           `koanf:"burst" validate:"gte=1"`
}

// CalendarSettings configures the iCalendar feed.
type CalendarSettings struct {
	Refresh time.Duration `koanf:"refresh" validate:"gt=0"`
	// AlarmTrigger is an ISO 8601 duration such as "-PT10M"; empty disables alarms.
	AlarmTrigger string `koanf:"alarm_trigger" validate:"omitempty,startswith=-P|startswith=P"`
}

// LoggingSettings configures the process logger.
type LoggingSettings struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	// File additionally writes logs to this path, truncated at startup.
	File string `koanf:"file"`
}

// DefaultSettings returns a Settings value with every default applied.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:              "",
			Port:              3000,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Search: SearchSettings{
			BaseURL: YouTubeSearchURL,
			Timeout: HTTPTimeout,
		},
		Encyclopedia: EncyclopediaSettings{
			RESTBase:      WikipediaRESTBase,
			ActionBase:    WikipediaActionBase,
			Timeout:       HTTPTimeout,
			RatePerSecond: 10,
			Burst:         5,
		},
		Calendar: CalendarSettings{
			Refresh: DefaultICalRefresh,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds Settings from defaults, then the YAML file, then environment variables.
// An explicit path wins over CONFIG_PATH and the default search paths.
func Load(path string) (*Settings, string, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, "", fmt.Errorf("%s: %w", ErrConfigDefaults, err)
	}

	configPath := findConfigFile(path)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("%s %s: %w", ErrConfigFile, configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, "", fmt.Errorf("%s: %w", ErrConfigEnv, err)
	}

	if err := splitCommaList(k, "server.cors_origins"); err != nil {
		return nil, "", err
	}

	settings := &Settings{}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, "", fmt.Errorf("%s: %w", ErrConfigUnmarshal, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, "", err
	}
	return settings, configPath, nil
}

// Validate checks the struct tags of every section.
func (s *Settings) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigInvalid, err)
	}
	return nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flat environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"host":                "server.host",
	"port":                "server.port",
	"static_dir":          "server.static_dir",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"regions_file":        "regions.file",
	"youtube_api_key":     "search.api_key",
	"youtube_search_url":  "search.base_url",
	"search_timeout":      "search.timeout",
	"wikipedia_rest_url":  "encyclopedia.rest_base",
	"wikipedia_api_url":   "encyclopedia.action_base",
	"calendar_refresh":    "calendar.refresh",
	"calendar_alarm":      "calendar.alarm_trigger",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"log_file":            "logging.file",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// splitCommaList turns a comma separated string (as set from the environment) into a slice.
func splitCommaList(k *koanf.Koanf, path string) error {
	strVal, ok := k.Get(path).(string)
	if !ok || strVal == "" {
		return nil
	}

	parts := strings.Split(strVal, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	if err := k.Set(path, trimmed); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
