package app

import "fmt"

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a failed data load.
type ErrQuery struct {
	Op    string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error (%s): %v", e.Op, e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// ErrExport represents a failed CSV export.
type ErrExport struct {
	Report string
	Cause  error
}

func (e *ErrExport) Error() string {
	return fmt.Sprintf("export %s: %v", e.Report, e.Cause)
}

func (e *ErrExport) Unwrap() error {
	return e.Cause
}
