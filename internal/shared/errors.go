package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoDataFound        = fmt.Errorf("no data found")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Entity errors
	ErrInvalidParameters = fmt.Errorf("invalid parameters")
	ErrNotPersisted      = fmt.Errorf("entity has not been saved")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// InvalidParametersError is returned when an entity is constructed without the
// identity or type it needs. Its message names the entity.
type InvalidParametersError struct {
	Entity string
}

// NewInvalidParametersError returns an [InvalidParametersError] for the named entity.
func NewInvalidParametersError(entity string) *InvalidParametersError {
	return &InvalidParametersError{Entity: entity}
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("Invalid parameters for %s.", e.Entity)
}

// Unwrap lets callers match with errors.Is(err, [ErrInvalidParameters]).
func (e *InvalidParametersError) Unwrap() error {
	return ErrInvalidParameters
}
