package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"resetd/pkg/common/logger"
)

const (
	testConfigFile    = "test.yml"
	defaultConfigFile = "default.yml"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the service configuration. The file is shared with the main
// application, so unknown keys are ignored.
type Config struct {
	Port  int            `mapstructure:"port"`
	DB    Database       `mapstructure:"db"`
	Redis Redis          `mapstructure:"redis"`
	Log   *logger.Config `mapstructure:"log"`
}

// Database holds the relational database connection settings.
// For the sqlite driver DB is the database file path.
type Database struct {
	Driver string `mapstructure:"driver"`
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	DB     string `mapstructure:"db"`
	User   string `mapstructure:"user"`
	Pass   string `mapstructure:"pass"`
}

// Redis holds the cache store connection settings.
type Redis struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

// Path returns the config file inside dir selected by the test mode flag.
func Path(dir string, testMode bool) string {
	if testMode {
		return filepath.Join(dir, testConfigFile)
	}
	return filepath.Join(dir, defaultConfigFile)
}

// Load reads and validates the YAML config file at path from fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.port", 5432)
	v.SetDefault("redis.port", 6379)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// MustLoad resolves the config file from the environment and loads it.
// A missing or malformed file is fatal.
func MustLoad(fs afero.Fs, dir string) *Config {
	env, err := LoadEnvironment()
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("cannot read environment")
	}
	if dir == "" {
		dir = env.ConfigDir
	}
	path := Path(dir, env.IsTestMode())
	config, err := Load(fs, path)
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Str("path", path).Msg("cannot load config")
	}
	return config
}

// Validate checks the fields the reset service depends on.
func (c *Config) Validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" {
			return errors.New("db.host is required")
		}
		if !validPort(c.DB.Port) {
			return fmt.Errorf("db.port %d out of range", c.DB.Port)
		}
		if c.DB.DB == "" {
			return errors.New("db.db is required")
		}
	case DriverSQLite:
		if c.DB.DB == "" {
			return errors.New("db.db must name the sqlite file")
		}
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.Redis.Host == "" {
		return errors.New("redis.host is required")
	}
	if !validPort(c.Redis.Port) {
		return fmt.Errorf("redis.port %d out of range", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db %d must not be negative", c.Redis.DB)
	}
	return nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }
