package game

import "errors"

var (
	ErrIllegalAction    = errors.New("illegal_action")
	ErrInvalidWager     = errors.New("invalid_wager")
	ErrHandAlreadyOver  = errors.New("hand_already_over")
	ErrUnknownPlayer    = errors.New("unknown_player")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrHandInProgress   = errors.New("hand_in_progress")
	ErrInvalidConfig    = errors.New("invalid_config")
	ErrTooManyPlayers   = errors.New("too_many_players")
)
