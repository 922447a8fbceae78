package app

import "errors"

var (
	ErrBotNotFound       = errors.New("bot not found")
	ErrBotNotDeployed    = errors.New("bot not deployed")
	ErrUserNotFound      = errors.New("user not found")
	ErrForbidden         = errors.New("forbidden")
	ErrTenantNotReady    = errors.New("tenant not provisioned")
	ErrInvalidKnowledge  = errors.New("invalid knowledge input")
	ErrKnowledgeNotFound = errors.New("knowledge item not found")
	ErrValidation        = errors.New("validation failed")
)
