package domain

import "errors"

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrFranchiseNotFound = errors.New("franchise not found")
	ErrNoHistory         = errors.New("no history to undo")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicatePlayer   = errors.New("player already exists")
)
