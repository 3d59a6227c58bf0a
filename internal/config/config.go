package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the host reads.
const EnvPrefix = "RUNHOST_"

// Config is the host configuration. The command being run never sees it.
type Config struct {
	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel" env:"LOG_LEVEL"`
	// LogPretty switches to human-readable console logs.
	LogPretty bool `json:"logPretty,omitempty" yaml:"logPretty" env:"LOG_PRETTY"`
	// LogFile additionally writes JSON logs to a rotating file.
	LogFile string `json:"logFile,omitempty" yaml:"logFile" env:"LOG_FILE"`
	// Confirm asks for confirmation before a command is started.
	Confirm bool `json:"confirm,omitempty" yaml:"confirm" env:"CONFIRM"`
	// StopTimeout bounds how long an interrupt waits for the command to unwind.
	StopTimeout Duration `json:"stopTimeout,omitempty" yaml:"stopTimeout" env:"STOP_TIMEOUT"`
	// EventLog is a file receiving lifecycle events as JSON lines; "-" means stderr.
	EventLog string `json:"eventLog,omitempty" yaml:"eventLog" env:"EVENT_LOG"`
	// NoColor disables colored status lines.
	NoColor bool `json:"noColor,omitempty" yaml:"noColor" env:"NO_COLOR"`
}

// Duration is a time.Duration that reads and writes as "5s" in every format.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		StopTimeout: Duration(5 * time.Second),
	}
}

// Load loads configuration from multiple sources (priority order):
// 1. Defaults
// 2. Global config (~/.config/runhost/)
// 3. Project config in directory (runhost.json, runhost.jsonc, runhost.yaml)
// 4. RUNHOST_CONFIG file
// 5. .env in directory (never overrides the real environment)
// 6. RUNHOST_* environment variables
func Load(directory string) (*Config, error) {
	config := Default()

	// Track loaded files to avoid duplicates
	loaded := make(map[string]bool)

	loadOnce := func(path string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if loaded[absPath] {
			return nil
		}
		err = loadConfigFile(path, config)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		loaded[absPath] = true
		return nil
	}

	dirs := []string{GetPaths().Config}
	if directory != "" {
		dirs = append(dirs, directory)
	}
	for _, dir := range dirs {
		for _, name := range []string{"runhost.json", "runhost.jsonc", "runhost.yaml", "runhost.yml"} {
			if err := loadOnce(filepath.Join(dir, name)); err != nil {
				return nil, err
			}
		}
	}

	if configPath := os.Getenv(EnvPrefix + "CONFIG"); configPath != "" {
		if err := loadConfigFile(configPath, config); err != nil {
			return nil, fmt.Errorf("load %s: %w", configPath, err)
		}
	}

	environment, err := environ(directory)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(config, env.Options{
		Environment: environment,
		Prefix:      EnvPrefix,
	}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return config, nil
}

// environ returns the process environment layered over directory/.env.
func environ(directory string) (map[string]string, error) {
	environment := make(map[string]string)
	if directory != "" {
		dotenv, err := godotenv.Read(filepath.Join(directory, ".env"))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		for k, v := range dotenv {
			environment[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environment[k] = v
		}
	}
	return environment, nil
}

// loadConfigFile merges a single config file into config. Fields absent from
// the file keep their current values.
func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = interpolate(data, filepath.Dir(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		// Strip JSONC comments using tidwall/jsonc
		return json.Unmarshal(jsonc.ToJSON(data), config)
	}
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			filePath = filepath.Join(os.Getenv("HOME"), filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}
		return strings.TrimSpace(string(content))
	})

	return []byte(str)
}

// Save writes config as indented JSON, creating parent directories.
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
