// Package config loads run settings in layers: built-in defaults, an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigFile is used when CONFIG_PATH is unset and the file exists.
const DefaultConfigFile = "waterbalance.yaml"

// Config holds all run settings.
type Config struct {
	DataRoot    string `koanf:"data_root" validate:"required"`
	DatasetID   string `koanf:"dataset_id" validate:"required"`
	CatchmentID string `koanf:"catchment_id" validate:"required"`
	OutputDir   string `koanf:"output_dir" validate:"required"`

	// Sanity check thresholds.
	DischargeToleranceMM float64 `koanf:"discharge_tolerance_mm" validate:"gte=0"`
	RunoffRatioMin       float64 `koanf:"runoff_ratio_min"`
	RunoffRatioMax       float64 `koanf:"runoff_ratio_max" validate:"gtfield=RunoffRatioMin"`

	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string `koanf:"log_format" validate:"oneof=json text"`
	MetricsFile string `koanf:"metrics_file"`

	// Optional export of balance records.
	KafkaEnabled    bool          `koanf:"kafka_enabled"`
	KafkaBrokerList string        `koanf:"kafka_brokers"`
	KafkaTopic      string        `koanf:"kafka_topic" validate:"required_if=KafkaEnabled true"`
	KafkaTimeout    time.Duration `koanf:"kafka_timeout" validate:"gt=0"`

	// KafkaBrokers is KafkaBrokerList split on commas.
	KafkaBrokers []string `koanf:"-"`
}

func defaultConfig() Config {
	return Config{
		DataRoot:             "data",
		DatasetID:            "8344e4f3-d2ea-44f5-8afa-86d2987543a9",
		CatchmentID:          "97002",
		OutputDir:            "out",
		DischargeToleranceMM: 1.0,
		RunoffRatioMin:       0,
		RunoffRatioMax:       1.5,
		LogLevel:             "info",
		LogFormat:            "text",
		KafkaEnabled:         false,
		KafkaBrokerList:      "localhost:9092",
		KafkaTopic:           "water-balance-records",
		KafkaTimeout:         10 * time.Second,
	}
}

// envKeys maps environment variables to config keys. Anything else in the
// environment is ignored.
var envKeys = map[string]string{
	"DATA_ROOT":              "data_root",
	"DATASET_ID":             "dataset_id",
	"CATCHMENT_ID":           "catchment_id",
	"OUTPUT_DIR":             "output_dir",
	"DISCHARGE_TOLERANCE_MM": "discharge_tolerance_mm",
	"RUNOFF_RATIO_MIN":       "runoff_ratio_min",
	"RUNOFF_RATIO_MAX":       "runoff_ratio_max",
	"LOG_LEVEL":              "log_level",
	"LOG_FORMAT":             "log_format",
	"METRICS_FILE":           "metrics_file",
	"KAFKA_ENABLED":          "kafka_enabled",
	"KAFKA_BROKERS":          "kafka_brokers",
	"KAFKA_TOPIC":            "kafka_topic",
	"KAFKA_TIMEOUT":          "kafka_timeout",
}

func envTransformFunc(key string) string {
	return envKeys[strings.ToUpper(key)]
}

// Load reads configuration from CONFIG_PATH (or waterbalance.yaml) and the environment.
func Load() (*Config, error) {
	return LoadFile(sharedcfg.EnvOrDefault(ConfigPathEnvVar, ""))
}

// LoadFile is Load with an explicit config file path. An empty path falls
// back to waterbalance.yaml in the working directory, if present.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = sharedcfg.ParseBrokers(cfg.KafkaBrokerList)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first offending setting
// by its environment variable name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: %s", envName(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	return nil
}

// envName maps a struct field name back to its environment variable.
func envName(field string) string {
	names := map[string]string{
		"DataRoot":             "DATA_ROOT",
		"DatasetID":            "DATASET_ID",
		"CatchmentID":          "CATCHMENT_ID",
		"OutputDir":            "OUTPUT_DIR",
		"DischargeToleranceMM": "DISCHARGE_TOLERANCE_MM",
		"RunoffRatioMin":       "RUNOFF_RATIO_MIN",
		"RunoffRatioMax":       "RUNOFF_RATIO_MAX",
		"LogLevel":             "LOG_LEVEL",
		"LogFormat":            "LOG_FORMAT",
		"KafkaTopic":           "KAFKA_TOPIC",
		"KafkaTimeout":         "KAFKA_TIMEOUT",
	}
	if n, ok := names[field]; ok {
		return n
	}
	return field
}

// ArchivePath is the downloaded dataset zip: <DATA_ROOT>/<DATASET_ID>.zip.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.DataRoot, c.DatasetID+".zip")
}

// ExtractDir is where the archive unpacks to.
func (c *Config) ExtractDir() string {
	return filepath.Join(c.DataRoot, c.DatasetID)
}

// DataDir holds timeseries/ and the attribute tables.
func (c *Config) DataDir() string {
	return filepath.Join(c.ExtractDir(), "data")
}
