package service

import "errors"

var (
	ErrVideoNotFound        = errors.New("video not found")
	ErrRateLimited          = errors.New("rate limited")
	ErrTasteUpdateConflict  = errors.New("taste update conflict")
	// ErrTasteWriteUncertain: el UPDATE del perfil fallo sin saber si llego a commitear.
	ErrTasteWriteUncertain  = errors.New("taste update outcome unknown")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrServiceNotConfigured = errors.New("service not configured")
)
