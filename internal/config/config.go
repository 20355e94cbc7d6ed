package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix namespaces every environment override
	EnvPrefix = "POCKET_MADLIBS"

	// DataDirEnv points at the data directory, kept from earlier releases
	DataDirEnv = "POCKET_MADLIBS_DIR"
)

// Keys understood in config.yaml, the environment and bound flags
const (
	KeyDataDir       = "data_dir"
	KeyBackend       = "backend"
	KeyTemplatesDir  = "templates_dir"
	KeyTemplatesFile = "templates_file"
	KeyPort          = "port"
	KeyLogLevel      = "log_level"
)

const (
	defaultDirName  = ".pocket-madlibs"
	defaultBackend  = "file"
	defaultPort     = 8080
	defaultLogLevel = "info"
)

// defaultConfigYAML is written to config.yaml on first run
const defaultConfigYAML = `# pocket-madlibs configuration

# Where answers are stored: file, sqlite or memory
backend: file

# Extra templates: a directory of .md files with YAML frontmatter
# (defaults to <data_dir>/templates) and an optional JSON dataset
# templates_dir:
# templates_file:

# Web server port for "pocket-madlibs serve"
port: 8080

# debug, info, warn or error
log_level: info
`

// Config is the resolved application configuration
type Config struct {
	DataDir       string `mapstructure:"data_dir"`
	Backend       string `mapstructure:"backend"`
	TemplatesDir  string `mapstructure:"templates_dir"`
	TemplatesFile string `mapstructure:"templates_file"`
	Port          int    `mapstructure:"port"`
	LogLevel      string `mapstructure:"log_level"`

	// ConfigFile is the file that was read, empty when none existed
	ConfigFile string `mapstructure:"-"`
}

// LogDir is where the application log is written
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// NewViper returns a viper instance with defaults and environment bindings.
// Callers may bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBackend, defaultBackend)
	v.SetDefault(KeyPort, defaultPort)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyTemplatesDir, "")
	v.SetDefault(KeyTemplatesFile, "")
	v.SetDefault(KeyDataDir, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyDataDir, DataDirEnv, EnvPrefix+"_DATA_DIR")

	return v
}

// Load resolves the data directory, makes sure it exists with a default
// config.yaml, then reads configFile (or <data_dir>/config.yaml when empty).
// A missing config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	dataDir, err := expandHome(v.GetString(KeyDataDir))
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, defaultDirName)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if err := ensureDefaultConfigFile(dataDir); err != nil {
			return nil, fmt.Errorf("ensure default config: %w", err)
		}
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dataDir)
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = used

	// data_dir in the file may move the data away from the config itself
	if cfg.DataDir, err = expandHome(cfg.DataDir); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cfg.TemplatesDir, err = expandHome(cfg.TemplatesDir); err != nil {
		return nil, err
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = filepath.Join(cfg.DataDir, "templates")
	}
	if cfg.TemplatesFile, err = expandHome(cfg.TemplatesFile); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up silently
func (c *Config) Validate() error {
	switch c.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid backend %q: want file, sqlite or memory", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// ensureDefaultConfigFile creates config.yaml when the data directory has none
func ensureDefaultConfigFile(dir string) error {
	path := filepath.Join(dir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
