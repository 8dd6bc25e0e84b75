package commerce

import "errors"

var (
	ErrNotFound      = errors.New("commerce: resource not found")
	ErrNoAdminToken  = errors.New("commerce: admin token is not configured")
	ErrUnexpectedRes = errors.New("commerce: unexpected response")
)
