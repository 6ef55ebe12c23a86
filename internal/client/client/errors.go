package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrBadEndpoint = errors.New("invalid server url")
)
