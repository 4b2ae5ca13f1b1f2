package service

import "errors"

var (
	ErrScenarioNotFound  = errors.New("scenario not found")
	ErrInvalidAction     = errors.New("invalid action")
	ErrNoActiveCharacter = errors.New("no character is active")
	ErrUnknownEntity     = errors.New("unknown entity")
)
