package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	MakeTurn(game *entity.Game) (entity.Action, error)
}

type botService struct {
	logger *slog.Logger
}

func NewBotService(logger *slog.Logger) BotService {
	return &botService{
		logger: logger.With("component", "bot"),
	}
}

// MakeTurn plays the minimax move for the bot's mark.
func (that *botService) MakeTurn(game *entity.Game) (entity.Action, error) {
	if game.IsFinished() {
		return entity.Action{}, ErrNoAvailableMoves
	}

	if !game.IsBotTurn() {
		return entity.Action{}, apperror.ErrNotYourTurn
	}

	action, ok := tictactoe.Minimax(game.Board)
	if !ok {
		return entity.Action{}, ErrNoAvailableMoves
	}

	if err := game.Play(action); err != nil {
		return entity.Action{}, fmt.Errorf("bot failed to make turn: %w", err)
	}

	that.logger.Debug("bot made turn", "gameID", game.ID, "mark", game.BotMark.String(), "action", action.String())

	return action, nil
}
