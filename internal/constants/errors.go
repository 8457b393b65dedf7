package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIConfigured  = errors.New("no API configured, use 'renku config set api <url>' or --api")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrNotAuthenticated = errors.New("not authenticated, use 'renku login' first")
)

// Command errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, use table, json or yaml")
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmptyToken          = errors.New("token must not be empty")
	ErrInvalidKeyValue     = errors.New("expected key=value")
)

// Alerting errors.
var (
	ErrNATSURLRequired = errors.New("NATS URL is required")
)
