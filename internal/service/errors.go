package service

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("not allowed")
	ErrInvalidState = errors.New("operation not valid for current status")
)
