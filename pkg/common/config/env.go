package config

import (
	"github.com/caarlos0/env/v11"
)

// TestEnv is the NODE_ENV value that switches the service into test mode.
const TestEnv = "test"

// Environment holds the process environment settings.
type Environment struct {
	NodeEnv   string `env:"NODE_ENV"`
	ConfigDir string `env:"RESETD_CONFIG_DIR" envDefault:".config"`
}

// LoadEnvironment reads Environment from the process environment.
func LoadEnvironment() (Environment, error) {
	return env.ParseAs[Environment]()
}

// IsTestMode reports whether NODE_ENV is exactly "test". It reads the
// environment on every call.
func IsTestMode() bool {
	e, err := LoadEnvironment()
	if err != nil {
		return false
	}
	return e.IsTestMode()
}

// IsTestMode reports whether e selects test mode.
func (e Environment) IsTestMode() bool {
	return e.NodeEnv == TestEnv
}
