package solrq

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a required argument is missing
var ErrInvalidArgument = errors.New("invalid argument")

// invalidArgument wraps ErrInvalidArgument with the offending parameter
func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
