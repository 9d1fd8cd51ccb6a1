package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "fintrack/internal/errors"
)

// AssertAppError fails unless err unwraps to an *AppError carrying the
// expected code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares two monetary values within a small epsilon, since
// budget arithmetic runs on float64.
func AssertAmount(t *testing.T, want, got float64) {
	t.Helper()

	if math.Abs(want-got) > 1e-9 {
		t.Errorf("expected amount %.2f, got %.2f", want, got)
	}
}
