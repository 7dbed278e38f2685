package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup.
var (
	// ErrEmptyViewport indicates a viewport with a zero or negative dimension.
	ErrEmptyViewport = errors.New("dynamo: empty viewport")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrInvalidScenario indicates a scripted scenario that cannot be replayed.
	ErrInvalidScenario = errors.New("dynamo: invalid scenario")
)

// ConfigError reports the configuration field that failed validation.
type ConfigError struct {
	Field   string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%v: %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
