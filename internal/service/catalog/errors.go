package catalog

import "errors"

var (
	ErrBucketNotFound = errors.New("assessment bucket not found")
	ErrInvalidBand    = errors.New("invalid age band")
)
