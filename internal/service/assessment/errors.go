package assessment

import "errors"

var (
	ErrSessionNotFound   = errors.New("assessment session not found")
	ErrQuestionNotFound  = errors.New("assessment question not found")
	ErrBucketNotFound    = errors.New("assessment bucket not found")
	ErrDuplicateResponse = errors.New("question already answered in this session")
	ErrValueMismatch     = errors.New("response value does not match the question type")
	ErrSessionOwnership  = errors.New("session does not belong to this user")
)
