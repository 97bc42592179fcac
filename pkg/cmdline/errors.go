package cmdline

import (
	"errors"
	"fmt"
)

// ErrMissingNFSRoot is returned when an nfs root is selected without nfsroot=.
var ErrMissingNFSRoot = errors.New("missing nfsroot command-line option")

// MissingArgumentError is returned for a known option that needs a value but came without one.
type MissingArgumentError struct {
	Key string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("cmdline option '%s' must have an argument", e.Key)
}

// InvalidValueError is returned when a value cannot be used for its option.
type InvalidValueError struct {
	Key    string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for cmdline option '%s': %s", e.Key, e.Reason)
}

// ResourceUnavailableError wraps a failure to read an external record.
type ResourceUnavailableError struct {
	Resource string
	Err      error
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("failed to read %s: %s", e.Resource, e.Err)
}

func (e *ResourceUnavailableError) Unwrap() error {
	return e.Err
}
