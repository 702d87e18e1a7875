package lifecycle

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by errors caused by invalid run configuration.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a configured input that cannot be used. Path is
// empty when the input is not a file.
type ConfigurationError struct {
	Reason string
	Path   string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// Is reports ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
