package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yarlson/go-planner/internal/taskstore"
)

// Config holds all planner configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Planner PlannerConfig `mapstructure:"planner"`
	Search  SearchConfig  `mapstructure:"search"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
	Key string `mapstructure:"key"`
}

// PlannerConfig holds task list behaviour
type PlannerConfig struct {
	WeeklyTargetHours float64    `mapstructure:"weekly_target_hours"`
	SampleData        bool       `mapstructure:"sample_data"`
	Sort              SortConfig `mapstructure:"sort"`
}

// SortConfig holds the initial sort order
type SortConfig struct {
	Field     string `mapstructure:"field"`
	Direction string `mapstructure:"direction"`
}

// SearchConfig holds search settings
type SearchConfig struct {
	Fields []string `mapstructure:"fields"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	Filename string `mapstructure:"filename"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// configName is the base name of the config file, without extension.
const configName = "planner"

// envPrefix prefixes environment overrides, e.g. PLANNER_LOG_LEVEL.
const envPrefix = "PLANNER"

// LoadConfigWithFile loads configuration from a specific file if provided,
// otherwise falls back to LoadConfig with the working directory.
func LoadConfigWithFile(workDir, configFile string) (*Config, error) {
	if configFile != "" {
		return LoadConfigFromPath(configFile)
	}
	return LoadConfig(workDir)
}

// LoadConfig loads configuration from planner.yaml in the given directory,
// then from the global config directory. If neither exists, defaults are
// returned.
func LoadConfig(dir string) (*Config, error) {
	v := newViper()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if global, err := GlobalConfigDir(); err == nil {
		v.AddConfigPath(global)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadConfigFromPath loads configuration from a specific file path. A
// missing file yields defaults.
func LoadConfigFromPath(configPath string) (*Config, error) {
	v := newViper()

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return unmarshal(v)
		}
		return nil, err
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets all default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.dir", DefaultStorageDir)
	v.SetDefault("storage.key", DefaultStorageKey)

	v.SetDefault("planner.weekly_target_hours", DefaultWeeklyTargetHours)
	v.SetDefault("planner.sample_data", DefaultSampleData)
	v.SetDefault("planner.sort.field", DefaultSortField)
	v.SetDefault("planner.sort.direction", DefaultSortDirection)

	v.SetDefault("search.fields", DefaultSearchFields)

	v.SetDefault("export.filename", DefaultExportFilename)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// Validate checks values that cannot be used as configured.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("invalid config: storage.key must not be empty")
	}
	if c.Planner.WeeklyTargetHours <= 0 {
		return fmt.Errorf("invalid config: planner.weekly_target_hours must be positive, got %v", c.Planner.WeeklyTargetHours)
	}
	if _, err := c.View(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.SearchFields(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// View returns the initial task list view described by planner.sort.
func (c *Config) View() (taskstore.View, error) {
	field, dir, err := taskstore.ParseSort(c.Planner.Sort.Field, c.Planner.Sort.Direction)
	if err != nil {
		return taskstore.View{}, err
	}
	return taskstore.DefaultView().WithSort(field, dir), nil
}

// SearchFields returns the task fields listed in search.fields.
func (c *Config) SearchFields() ([]taskstore.SearchField, error) {
	if len(c.Search.Fields) == 0 {
		return taskstore.DefaultSearchFields, nil
	}

	fields := make([]taskstore.SearchField, 0, len(c.Search.Fields))
	for _, name := range c.Search.Fields {
		switch f := taskstore.SearchField(strings.ToLower(name)); f {
		case taskstore.SearchTitle, taskstore.SearchTag:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("unknown search field %q", name)
		}
	}
	return fields, nil
}

// StoragePath resolves storage.dir against root unless it is absolute.
func (c *Config) StoragePath(root string) string {
	if filepath.IsAbs(c.Storage.Dir) {
		return c.Storage.Dir
	}
	return filepath.Join(root, c.Storage.Dir)
}
