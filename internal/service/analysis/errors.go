package analysis

import "errors"

var (
	ErrNoResponses    = errors.New("no assessment responses found for this user")
	ErrUpstream       = errors.New("analysis provider call failed")
	ErrMalformedReply = errors.New("analysis provider returned a malformed profile")
)
