package engine

import "errors"

// Rejections. An action that fails with one of these leaves the game untouched.
var (
	ErrOutOfBounds      = errors.New("engine: coordinate out of bounds")
	ErrBlocked          = errors.New("engine: target cell is a hard block")
	ErrInvalidDirection = errors.New("engine: invalid direction")
	ErrUnknownPlayer    = errors.New("engine: unknown player")
	ErrPlayerDead       = errors.New("engine: player is not alive")
	ErrBombActive       = errors.New("engine: bomb capacity reached")
	ErrCellOccupied     = errors.New("engine: cell already holds a bomb")
	ErrNotYourTurn      = errors.New("engine: not this player's turn")
	ErrGameOver         = errors.New("engine: game is over")
	ErrCannotPickup     = errors.New("engine: player cannot pick up bombs")
	ErrNoBombHere       = errors.New("engine: no bomb on this cell")
	ErrAlreadyCarrying  = errors.New("engine: player already carries a bomb")
	ErrNotCarrying      = errors.New("engine: player carries no bomb")
	ErrNoLanding        = errors.New("engine: no open cell to land on")
)

// ErrMarkerMismatch signals that the bomb set and the grid occupancy layer
// disagree. It is an integrity failure, not a gameplay outcome.
var ErrMarkerMismatch = errors.New("engine: bomb marker does not match bomb id")

// ErrInvalidConfig is wrapped by Config.Validate.
var ErrInvalidConfig = errors.New("engine: invalid config")
