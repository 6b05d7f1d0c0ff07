package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key this service writes to the key-value
// store.
const KeyPrefix = "shipdex:"

var (
	// ErrEmptyQuery signals a query with no usable field after normalization.
	ErrEmptyQuery = errors.New("query has no usable fields")
	// ErrInvalidQuery signals a malformed query parameter (weights, filters).
	ErrInvalidQuery = errors.New("invalid query parameter")
	// ErrRecordNotFound signals a missing vessel record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnknownGroupKey signals a lookup for a group that does not exist.
	ErrUnknownGroupKey = errors.New("unknown group key")
	// ErrClassificationNotFound signals a missing stored classification.
	ErrClassificationNotFound = errors.New("classification not found")
	// ErrDataSource signals an unreadable or malformed corpus source.
	ErrDataSource = errors.New("corpus source error")
	// ErrCacheUnavailable signals that classification persistence is disabled.
	ErrCacheUnavailable = errors.New("classification cache unavailable")
)

// DataSourceError wraps ErrDataSource with the offending source path.
// Fatal at startup; never retried.
type DataSourceError struct {
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDataSource.Error(), e.Path, e.Err.Error())
}

func (e *DataSourceError) Unwrap() []error { return []error{ErrDataSource, e.Err} }

// NewDataSourceError creates a data source error for the given path.
func NewDataSourceError(path string, err error) error {
	return &DataSourceError{Path: path, Err: err}
}
