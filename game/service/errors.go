package service

import (
	"errors"

	"github.com/wricardo/grid-tactics/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrInvalidScenario      = errors.New("invalid scenario")
	ErrInvalidInput         = errors.New("invalid input")
)

// IsNotFound reports whether err means a session or scenario does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrScenarioNotFound)
}

// IsInvalidInput reports whether err was caused by a bad request rather than
// a server fault
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidScenario) ||
		errors.Is(err, ErrSessionAlreadyExists) ||
		errors.Is(err, engine.ErrInvalidScenario) ||
		errors.Is(err, engine.ErrInvalidPlacement) ||
		errors.Is(err, engine.ErrIllegalMove)
}
