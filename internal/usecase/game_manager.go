package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	MakeTurn(game *entity.Game) (entity.Action, error)
}

// GameManager runs matches between a human player and the minimax bot.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	bot      botService
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		bot:      bot,
	}
}

// CreateGame starts a match. When the bot plays X it opens immediately.
func (that *GameManager) CreateGame(ctx context.Context, humanMark entity.Mark) (*entity.Game, error) {
	game, err := entity.NewGame(uuid.NewString(), humanMark)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if game.IsBotTurn() {
		if _, err = that.bot.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "humanMark", humanMark.String())

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeTurn applies the human move and, unless it ended the game, the bot's reply.
// The whole turn is stored atomically; a turn that raced with another one on the same game is
// replayed against the newer state.
func (that *GameManager) MakeTurn(ctx context.Context, id string, action entity.Action) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", id)

	var botAction *entity.Action

	game, err := that.gameRepo.Update(ctx, id, func(current *entity.Game) error {
		botAction = nil

		if current.IsFinished() {
			return apperror.ErrGameFinished
		}

		if !current.IsHumanTurn() {
			return apperror.ErrNotYourTurn
		}

		if err := current.Play(action); err != nil {
			return fmt.Errorf("failed to make turn: %w", err)
		}

		if current.IsFinished() {
			return nil
		}

		reply, err := that.bot.MakeTurn(current)
		if err != nil {
			return fmt.Errorf("bot failed to make turn: %w", err)
		}

		botAction = &reply

		return nil
	})
	if err != nil {
		return nil, err
	}

	if botAction != nil {
		log.Debug("bot replied", "action", botAction.String())
	}

	if game.IsFinished() {
		log.Info("game finished", "winner", game.Winner)
	}

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}
