package util

import (
	"errors"
	"fmt"
)

// One sentinel per error kind. Services wrap these with context via
// fmt.Errorf("%w: ...") and controllers dispatch on errors.Is; anything that
// does not match a kind below is treated as a storage failure.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotPublished       = errors.New("assessment not published")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotEnrolled        = errors.New("student not enrolled in course")
	ErrAttemptCompleted   = errors.New("attempt already completed")
	ErrValidation         = errors.New("validation failed")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrStorage            = errors.New("storage error")
)

// Storage wraps a datastore failure. Writes behind the uniqueness and
// conditional-update guards are safe for the caller to retry wholesale; the
// core itself never retries.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
