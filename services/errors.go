package services

import "errors"

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrOwnerNotFound = errors.New("owner not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrMatchNotFound = errors.New("match not found")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidRole            = errors.New("invalid user role")

	ErrInvalidMatchCount = errors.New("match count must be at least 1")
	ErrStorageDisabled   = errors.New("object storage is not configured")
)
