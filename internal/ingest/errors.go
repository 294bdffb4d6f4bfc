package ingest

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a source that does not exist. It is skipped.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrMalformedPrice is returned when a price does not match the currency grammar.
var ErrMalformedPrice = errors.New("malformed price")

// ErrMalformedQuantity is returned when a quantity is not an integer.
var ErrMalformedQuantity = errors.New("malformed quantity")

// ErrMalformedDate is returned when a date is not an ISO-8601 calendar date.
var ErrMalformedDate = errors.New("malformed date")

// ErrMissingColumn is returned when a source header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnsupportedFormat is returned for source files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// ErrEmptyResult means no usable source produced any row; nothing is persisted.
var ErrEmptyResult = errors.New("no records to persist")

// RowError locates a bad value inside a source.
type RowError struct {
	Source string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v in column '%s': '%s'", e.Source, e.Line, e.Err, e.Column, e.Value)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
