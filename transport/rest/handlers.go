package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const maxBodyBytes = 1 << 12

type createGameRequest struct {
	Mark entity.Mark `json:"mark"`
}

type minimaxRequest struct {
	Board *entity.Board `json:"board"`
}

type minimaxResponse struct {
	Player   entity.Mark    `json:"player"`
	Terminal bool           `json:"terminal"`
	Winner   entity.Mark    `json:"winner"`
	Utility  *int           `json:"utility,omitempty"`
	Value    int            `json:"value"`
	Action   *entity.Action `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.CreateGame(r.Context(), req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleGameTurn(w http.ResponseWriter, r *http.Request) {
	var action entity.Action
	if err := decodeJSON(w, r, &action); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.MakeTurn(r.Context(), r.PathValue("id"), action)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMinimax exposes the engine on a caller supplied board without storing anything.
func (that *Server) handleMinimax(w http.ResponseWriter, r *http.Request) {
	var req minimaxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Board == nil {
		that.writeError(w, fmt.Errorf("%w: board is required", apperror.ErrInvalidBoard))
		return
	}

	board := *req.Board
	if err := board.Validate(); err != nil {
		that.writeError(w, err)
		return
	}

	action, value, ok := tictactoe.Search(board)

	resp := minimaxResponse{
		Player:   board.Player(),
		Terminal: board.Terminal(),
		Value:    value,
	}

	if winner, won := board.Winner(); won {
		resp.Winner = winner
	}

	if resp.Terminal {
		utility := board.Utility()
		resp.Utility = &utility
	}

	if ok {
		resp.Action = &action
	}

	that.writeJSON(w, http.StatusOK, resp)
}

var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, apperror.ErrInvalidMark) || errors.Is(err, apperror.ErrInvalidBoard) {
			return err
		}

		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}

	return nil
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalMove),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrInvalidBoard):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
