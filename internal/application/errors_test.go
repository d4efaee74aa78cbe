package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"requester.name": "required", "cells": "empty"}}
	if got := withFields.Error(); got != "validation failed: cells, requester.name" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestPartialCommitError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("commit: %w", &PartialCommitError{Attempted: 5, Created: 3, Failed: 2})
	if !errors.Is(err, ErrPartialCommit) {
		t.Fatalf("expected wrapped partial commit error to match sentinel")
	}
	var pErr *PartialCommitError
	if !errors.As(err, &pErr) || pErr.Created != 3 {
		t.Fatalf("expected errors.As to expose counts, got %+v", pErr)
	}
	if got := pErr.Error(); got != "application: 2 of 5 reservations failed to commit (3 created)" {
		t.Fatalf("unexpected message %q", got)
	}
}
