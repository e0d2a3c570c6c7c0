package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMessageEmpty      = errors.New("valid message is required")
	ErrInvalidHistory    = errors.New("invalid chat history format")
	ErrInvalidCategory   = errors.New("unknown assessment category")
	ErrSessionNotFound   = errors.New("chat session not found")
	ErrCompletionFailed  = errors.New("error communicating with AI service")
	ErrEmailExists       = errors.New("an account with this email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
)
