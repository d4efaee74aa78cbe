package application

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource or reservation does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrResourceRestricted is returned when a restricted resource is used without a valid unlock.
	ErrResourceRestricted = errors.New("application: resource is restricted")
	// ErrInvalidUnlockToken is returned when an unlock token does not match the resource.
	ErrInvalidUnlockToken = errors.New("application: invalid unlock token")
	// ErrSnapshotFetchFailed is returned when the reservation snapshot could not be read.
	ErrSnapshotFetchFailed = errors.New("application: snapshot fetch failed")
	// ErrPartialCommit is matched by *PartialCommitError.
	ErrPartialCommit = errors.New("application: partial commit")
	// ErrAlreadyCancelled is returned when cancelling a reservation twice.
	ErrAlreadyCancelled = errors.New("application: reservation already cancelled")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// PartialCommitError reports that some candidates of a commit were not
// written. Nothing that was written is rolled back.
type PartialCommitError struct {
	Attempted int
	Created   int
	Failed    int
}

// Error implements the error interface.
func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("application: %d of %d reservations failed to commit (%d created)", e.Failed, e.Attempted, e.Created)
}

// Is lets errors.Is match ErrPartialCommit.
func (e *PartialCommitError) Is(target error) bool {
	return target == ErrPartialCommit
}
