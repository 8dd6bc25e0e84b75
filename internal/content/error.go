package content

import (
	"errors"

	"storvbox-be/internal/apperr"
)

var (
	ErrPostNotFound  = apperr.New(apperr.KindNotFound, "Статията не е намерена")
	ErrNotConfigured = errors.New("content: cms project is not configured")
	ErrUnexpectedRes = errors.New("content: unexpected cms response")
)
