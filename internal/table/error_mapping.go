package table

import (
	"errors"
	"net/http"

	"holdem-core/internal/game"
)

// MapError turns a table or engine error into an HTTP status and wire code.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusConflict, "illegal_action"
	case errors.Is(err, game.ErrInvalidWager):
		return http.StatusBadRequest, "invalid_wager"
	case errors.Is(err, game.ErrHandAlreadyOver):
		return http.StatusConflict, "hand_already_over"
	case errors.Is(err, game.ErrUnknownPlayer):
		return http.StatusNotFound, "unknown_player"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusConflict, "not_enough_players"
	case errors.Is(err, game.ErrTooManyPlayers):
		return http.StatusConflict, "too_many_players"
	case errors.Is(err, game.ErrHandInProgress):
		return http.StatusConflict, "hand_in_progress"
	case errors.Is(err, ErrSeatTaken):
		return http.StatusConflict, "seat_taken"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrTableNotFound):
		return http.StatusNotFound, "table_not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
