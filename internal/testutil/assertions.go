package testutil

import (
	"errors"
	"testing"

	apperrors "tally/internal/errors"
)

// AssertAppError fails the test unless err unwraps to an *AppError
// carrying wantCode.
func AssertAppError(t *testing.T, err error, wantCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("want AppError %q, got nil", wantCode)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("want *AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Errorf("error code = %q (%s), want %q", appErr.Code, appErr.Message, wantCode)
	}
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
