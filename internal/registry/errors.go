package registry

import "errors"

// serviceNotFoundError is returned by Get for an unknown id.
type serviceNotFoundError struct {
	id     string
	reason string
}

func (e serviceNotFoundError) Error() string {
	if e.reason != "" {
		return "service not found: " + e.id + " (" + e.reason + ")"
	}
	return "service not found: " + e.id
}

// ErrServiceNotFound constructs the error Get returns for a missing id.
func ErrServiceNotFound(id string) error { return serviceNotFoundError{id: id} }

// IsServiceNotFound reports whether err, or any error it wraps, indicates a
// missing service.
func IsServiceNotFound(err error) bool {
	var nf serviceNotFoundError
	return errors.As(err, &nf)
}
