package domain

import "fmt"

// ValidationError marks input the caller can fix: a missing required
// field, an unknown action name, an ID at or below zero.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when the addressed entity does not exist.
// Deletes and updates of absent IDs report it uniformly.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
	return e.Entity + " not found"
}

// NotFound builds a NotFoundError for an entity/ID pair.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// PersistenceError wraps a failed store operation, including unique
// constraint violations and connection failures.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err with the failing store operation name.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// FileSystemError wraps a failed file operation on clip or watermark
// storage.
type FileSystemError struct {
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("file %s: %v", e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// FileSystem wraps err with the path the operation failed on.
func FileSystem(path string, err error) error {
	return &FileSystemError{Path: path, Err: err}
}
