package domain

import "errors"

var (
	ErrGenerationFailed                = errors.New("generation failed")
	ErrMalformedGenerationResult       = errors.New("malformed generation result")
	ErrRateLimited                     = errors.New("rate limited")
	ErrInvalidCredentialsOrCorruptData = errors.New("invalid password or corrupted data")
	ErrInvalidPersonaFormat            = errors.New("invalid persona file format")
	ErrPasswordRequired                = errors.New("password required")
	ErrPersonaNotFound                 = errors.New("persona not found")
	ErrInvalidInput                    = errors.New("invalid input")
)
