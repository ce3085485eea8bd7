package dgraph

import "github.com/pkg/errors"

// ErrNoAlphas is the cause of a ConfigurationError raised when the alpha pool
// is empty or was never configured.
var ErrNoAlphas = errors.New("no alpha endpoints configured")

// ConfigurationError indicates that a client cannot be built because of the
// provider's configuration. It is not retryable without fixing the
// configuration.
type ConfigurationError struct {
	Err error
}

func (e ConfigurationError) Error() string {
	return "dgraph: configuration error: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether any error in err's chain is a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var cerr ConfigurationError
	return errors.As(err, &cerr)
}
