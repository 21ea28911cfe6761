package guardian

import "errors"

var (
	ErrMissingCriteria = errors.New("first name, last name, and date of birth are required")
	ErrChildNotFound   = errors.New("no child found with the provided details")
	ErrAmbiguousMatch  = errors.New("multiple children found with these details")
	ErrAlreadyLinked   = errors.New("guardian is already linked to this child")
)
