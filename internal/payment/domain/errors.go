package domain

import "errors"

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidStatus    = errors.New("invalid_attempt_status")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrDuplicateEvent   = errors.New("duplicate_event")
	ErrInvalidStore     = errors.New("invalid_store")
)
