package core

import "fmt"

// MissingFileError is returned when a required source file cannot be read.
type MissingFileError struct {
	Entity string
	Path   string
	Err    error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing source file for %s: %s: %v", e.Entity, e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}

// EmptyInputError is returned when a table a join depends on has no rows.
type EmptyInputError struct {
	Entity string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("table %s is empty", e.Entity)
}

// SchemaMismatchError is returned when a loaded table lacks a required column.
type SchemaMismatchError struct {
	Entity string
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table %s is missing required column %q", e.Entity, e.Column)
}
