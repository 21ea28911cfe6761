package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("child profile not found")
	ErrInvalidDate     = errors.New("invalid date of birth")
)
