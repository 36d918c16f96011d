package service

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("project not visible to caller")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidZoom   = errors.New("invalid timeline window")
	ErrInvalidConfig = errors.New("invalid alert thresholds")
	ErrBadCredential = errors.New("invalid email or password")
)
