package task

import (
	"errors"
	"fmt"
	"testing"

	domain "github.com/mmmtweb2/TodoApp/domain/task"
)

func TestFailure_RoundTrip(t *testing.T) {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrUnauthorized,
		domain.ErrNotFound,
		domain.ErrAlreadyShared,
		domain.ErrShareNotFound,
		domain.ErrNoRecipientsFound,
		domain.ErrConflict,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("%w: extra detail", sentinel)
			failure := NewFailure(wrapped)
			if failure == nil {
				t.Fatalf("NewFailure(%v) = nil", wrapped)
			}

			err := failure.Err()
			if !errors.Is(err, sentinel) {
				t.Errorf("Err() = %v, does not match %v", err, sentinel)
			}
			if err.Error() != wrapped.Error() {
				t.Errorf("Err().Error() = %q, want %q", err.Error(), wrapped.Error())
			}
		})
	}
}

func TestNewFailure_UnknownError(t *testing.T) {
	if f := NewFailure(errors.New("disk on fire")); f != nil {
		t.Errorf("NewFailure() = %+v, want nil", f)
	}
}

func TestFailure_UnknownCode(t *testing.T) {
	err := (&Failure{Code: "bogus", Message: "?"}).Err()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound} {
		if errors.Is(err, sentinel) {
			t.Errorf("unknown code matched %v", sentinel)
		}
	}
}
