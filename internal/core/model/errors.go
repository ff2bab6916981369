package model

import "errors"

var (
	ErrInvalidAffinity = errors.New("invalid affinity")
	ErrMalformedPath   = errors.New("malformed flavor path")
	ErrInvalidPairing  = errors.New("invalid pairing")
)
