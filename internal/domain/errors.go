package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrUnknownSource      = errors.New("unknown source type")
)
