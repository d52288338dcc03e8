package task

import "errors"

var (
	// ErrValidation is returned when input has the wrong shape, e.g. an empty title.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is returned when the actor lacks the required permission.
	ErrUnauthorized = errors.New("insufficient permission")
	// ErrNotFound is returned when a task does not exist or must not be revealed.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyShared is returned when every requested recipient already has access.
	ErrAlreadyShared = errors.New("task is already shared with these users")
	// ErrShareNotFound is returned when the target user holds no share on the task.
	ErrShareNotFound = errors.New("user is not in the share list")
	// ErrNoRecipientsFound is returned when none of the requested recipients exist.
	ErrNoRecipientsFound = errors.New("no users found to share with")
	// ErrConflict is returned when the task changed between read and write.
	ErrConflict = errors.New("task was modified concurrently")
)
