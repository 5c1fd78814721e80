package chaterr

import "errors"

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrSessionRequired = errors.New("session id required")
)
